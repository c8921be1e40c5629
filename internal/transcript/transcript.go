// Package transcript turns a captured audio clip into text.
package transcript

import (
	"net/http"
	"strings"
)

// Clip is one captured answer. SessionID names the scratch file the clip is
// staged in, so concurrent sessions never share one.
type Clip struct {
	SessionID string
	Audio     []byte
}

// extensionFor sniffs the container format so upstream services that infer
// the codec from the filename accept the upload.
func extensionFor(audio []byte) string {
	ct := http.DetectContentType(audio)
	switch {
	case strings.HasPrefix(ct, "audio/wave"):
		return ".wav"
	case strings.HasPrefix(ct, "video/webm"), strings.HasPrefix(ct, "audio/webm"):
		return ".webm"
	case strings.HasPrefix(ct, "application/ogg"), strings.HasPrefix(ct, "audio/ogg"):
		return ".ogg"
	case strings.HasPrefix(ct, "audio/mpeg"):
		return ".mp3"
	case strings.HasPrefix(ct, "audio/mp4"), strings.HasPrefix(ct, "video/mp4"):
		return ".m4a"
	default:
		return ".wav"
	}
}
