package interview

import (
	"fmt"

	"github.com/chadiek/interview-coach/internal/session"
)

// Refusal is the coordinator's exact reply to off-topic lobby questions.
const Refusal = "This inquiry is not relevant to the assessment. Please focus on the interview preparations."

// Candidate placeholders recorded instead of an answer.
const (
	SkippedAnswer = "(Skipped)"
	TimeoutAnswer = "(Timeout)"
)

var openers = map[session.Role]string{
	session.RoleSoftwareEngineer:    "Q1: Introduce yourself and your tech stack.",
	session.RoleSalesRepresentative: "Q1: Pitch yourself in 30 seconds.",
	session.RoleRetailAssociate:     "Q1: Why do you want to work in retail?",
}

// Opener returns the fixed first question for role.
func Opener(role session.Role) string {
	if q, ok := openers[role]; ok {
		return q
	}
	return openers[session.RoleRetailAssociate]
}

func coordinatorPrompt(role session.Role, query string) string {
	return fmt.Sprintf(`You are the Practice Coordinator.
User Query: %q

INSTRUCTIONS:
1. If the query is about the interview, role (%s), or rules: Answer helpfully.
2. If the query is IRRELEVANT (weather, jokes, coding help, sports, general chat):
   Reply EXACTLY: "%s"`, query, role, Refusal)
}

func answerPrompt(role session.Role, level session.Level) string {
	return fmt.Sprintf(`You are a strict Interviewer for a %s %s position.
Candidate just answered.

STRICT RULES:
1. DO NOT repeat, summarize, or rephrase the candidate's answer.
2. DO NOT give evaluative feedback (no "Good answer", "Great point").
3. Acknowledge with exactly ONE professional word/phrase (e.g., "Noted.", "Understood.", "Clear.", "Right.").
4. Immediately ask the NEXT question.

Example: "Noted. How do you handle API rate limiting?"
Example: "Understood. Tell me about a conflict you had with a coworker."`, level, role)
}

func skipPrompt(role session.Role) string {
	return fmt.Sprintf("You are a strict Interviewer for %s. User Skipped. Reply: 'Noted. Next question:' followed by a NEW question that has not been asked before.", role)
}

func timeoutPrompt(role session.Role) string {
	return fmt.Sprintf("You are a strict Interviewer for %s. User Timed out. Reply: 'Time exceeded. Next question:' followed by question.", role)
}

const reviewerSystem = "You are an experienced interview coach reviewing the transcript of a mock interview above. The assistant turns are the interviewer; the user turns are the candidate."

func reportPrompt(role session.Role, level session.Level) string {
	return fmt.Sprintf(`Role: %s (%s). Review transcript.

GENERATE A QUALITATIVE FEEDBACK REPORT (Markdown).
DO NOT PROVIDE A HIRE/NO-HIRE DECISION.

Structure:
### 1. Executive Summary
[Brief overview of performance]

### 2. Key Strengths
* [Strength 1]
* [Strength 2]

### 3. Areas for Improvement
* [Weakness 1]
* [Weakness 2]

### 4. Suggested Learning Path
[Recommendations]`, role, level)
}

func scorePrompt(role session.Role, level session.Level) string {
	return fmt.Sprintf(`Role: %s (%s). Review transcript.

Return a JSON object with:
- "score": integer 0-100 overall readiness score.
- "justification": one sentence explaining the score.
Consider clarity, depth, structure, and role alignment.
Respond ONLY with valid JSON.`, role, level)
}
