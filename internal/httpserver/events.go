package httpserver

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/chadiek/interview-coach/internal/interview"
	"github.com/chadiek/interview-coach/internal/session"
)

// eventPayload is the JSON body of an event, shared by the REST API and the
// websocket channel. Audio arrives base64-encoded.
type eventPayload struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Role  string `json:"role"`
	Level string `json:"level"`
	Audio []byte `json:"audio"`
}

func (p eventPayload) event(name string) (interview.Event, error) {
	switch name {
	case interview.SelectRole{}.Name():
		r, err := session.ParseRole(p.Role)
		if err != nil {
			return nil, err
		}
		return interview.SelectRole{Role: r}, nil
	case interview.SelectLevel{}.Name():
		l, err := session.ParseLevel(p.Level)
		if err != nil {
			return nil, err
		}
		return interview.SelectLevel{Level: l}, nil
	case interview.SubmitCoordinatorQuestion{}.Name():
		return interview.SubmitCoordinatorQuestion{Text: p.Text}, nil
	case interview.StartSession{}.Name():
		return interview.StartSession{}, nil
	case interview.SubmitAnswer{}.Name():
		return interview.SubmitAnswer{Text: p.Text}, nil
	case interview.SubmitAudio{}.Name():
		if len(p.Audio) == 0 {
			return nil, fmt.Errorf("audio is empty")
		}
		return interview.SubmitAudio{Audio: p.Audio}, nil
	case interview.Skip{}.Name():
		return interview.Skip{}, nil
	case interview.TimeoutElapsed{}.Name():
		return interview.TimeoutElapsed{}, nil
	case interview.Quit{}.Name():
		return interview.Quit{}, nil
	case interview.GenerateFeedback{}.Name():
		return interview.GenerateFeedback{}, nil
	case interview.StartNewSession{}.Name():
		return interview.StartNewSession{}, nil
	}
	return nil, fmt.Errorf("unknown event %q", name)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("audio is empty")
	}
	return b, nil
}
