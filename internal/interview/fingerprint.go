package interview

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a stable content hash used to recognize input seen before.
func Fingerprint(b []byte) string {
	return strconv.FormatUint(xxhash.Sum64(b), 16)
}

// messageFingerprint distinguishes transcript entries by position as well as
// text, so a repeated question is still spoken again.
func messageFingerprint(index int, text string) string {
	d := xxhash.New()
	_, _ = d.WriteString(strconv.Itoa(index))
	_, _ = d.WriteString(":")
	_, _ = d.WriteString(text)
	return strconv.FormatUint(d.Sum64(), 16)
}
