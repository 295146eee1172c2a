// Package response turns raw replies of the remote reasoning service into
// validated domain results. Nothing from a reply reaches the rest of the
// system without passing through here.
package response

import (
	"strings"

	"github.com/Veraticus/immowert/internal/common"
)

// Extract returns the text from the first "{" to the last "}" of raw. Code
// fences and prose only ever surround the object, so cutting the span drops
// them while string values inside it stay byte for byte. It is idempotent on
// clean JSON.
func Extract(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		reason := "no JSON object found"
		if strings.TrimSpace(raw) == "" {
			reason = "reply is empty"
		}
		return "", &common.ExtractionError{Raw: raw, Reason: reason}
	}

	return raw[start : end+1], nil
}
