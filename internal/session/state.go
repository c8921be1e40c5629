// Package session holds the mutable state of one mock-interview session and
// the in-memory registry that owns those states.
package session

import (
	"fmt"
	"slices"
	"time"
)

// Phase is the top-level session state. Exactly one is active at a time.
type Phase string

const (
	PhaseLobby        Phase = "lobby"
	PhaseInterviewing Phase = "interviewing"
	PhaseFeedback     Phase = "feedback"
)

// Role is the job the candidate practices for.
type Role string

const (
	RoleSoftwareEngineer    Role = "Software Engineer"
	RoleSalesRepresentative Role = "Sales Representative"
	RoleRetailAssociate     Role = "Retail Associate"
)

// Roles lists the selectable roles in display order.
func Roles() []Role {
	return []Role{RoleSoftwareEngineer, RoleSalesRepresentative, RoleRetailAssociate}
}

// ParseRole accepts a role display name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !slices.Contains(Roles(), r) {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Level is the candidate's seniority.
type Level string

const (
	LevelJunior   Level = "Junior"
	LevelMidLevel Level = "Mid-Level"
	LevelSenior   Level = "Senior"
)

// Levels lists the selectable levels in display order.
func Levels() []Level {
	return []Level{LevelJunior, LevelMidLevel, LevelSenior}
}

// ParseLevel accepts a level display name.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !slices.Contains(Levels(), l) {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

// Speaker identifies who produced a message.
type Speaker string

const (
	SpeakerInterviewer Speaker = "interviewer"
	SpeakerCandidate   Speaker = "candidate"
	SpeakerUser        Speaker = "user"
	SpeakerCoordinator Speaker = "coordinator"
)

// Message is one transcript entry.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Score is the numeric evaluation. Value is nil when the model response could
// not be parsed; Justification then carries the raw response.
type Score struct {
	Value         *int   `json:"score"`
	Justification string `json:"justification"`
}

// State is everything a session knows. It is owned by the Store and mutated
// only by the interview state machine while the session lock is held.
type State struct {
	ID    string
	Phase Phase
	Role  Role
	Level Level

	// QuestionCount is 1 once the opener is asked and advances once per
	// answered, skipped or timed-out question.
	QuestionCount     int
	InterviewMessages []Message
	LobbyMessages     []Message

	LastAudioFingerprint  string
	LastSpokenFingerprint string
	QuestionStartedAt     time.Time

	FinalReport string
	FinalScore  *Score

	CreatedAt time.Time
}

// New returns a state with defaults: lobby phase, first role and level.
func New(id string, now time.Time) *State {
	s := &State{ID: id}
	s.Reset(now)
	return s
}

// Reset returns every field except ID to its default.
func (s *State) Reset(now time.Time) {
	*s = State{
		ID:        s.ID,
		Phase:     PhaseLobby,
		Role:      RoleSoftwareEngineer,
		Level:     LevelJunior,
		CreatedAt: now,
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.InterviewMessages = slices.Clone(s.InterviewMessages)
	c.LobbyMessages = slices.Clone(s.LobbyMessages)
	if s.FinalScore != nil {
		sc := *s.FinalScore
		if sc.Value != nil {
			v := *sc.Value
			sc.Value = &v
		}
		c.FinalScore = &sc
	}
	return &c
}

// LastInterviewMessage returns the newest interview transcript entry.
func (s *State) LastInterviewMessage() (Message, bool) {
	if len(s.InterviewMessages) == 0 {
		return Message{}, false
	}
	return s.InterviewMessages[len(s.InterviewMessages)-1], true
}
