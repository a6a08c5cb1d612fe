package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// basic safety limits to avoid pathological model outputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxErrSnippet = 200       // limit error snippet size
)

// extractJSONObject reduces raw model output to the JSON object it should
// contain: size guard, optional markdown code fence removal, and a check that
// what remains is a single object.
func extractJSONObject(content string) (string, error) {
	if len(content) > maxContentLen {
		return "", fmt.Errorf("content too large (%d bytes)", len(content))
	}

	s := strings.TrimSpace(content)
	s = stripCodeFence(s)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return "", fmt.Errorf("not a JSON object: %s", safeSnippet(s))
	}
	return s, nil
}

// stripCodeFence removes a surrounding markdown fence (``` or ```json) that
// models commonly wrap JSON output in.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		// drop the language tag line ("json", "JSON" or empty)
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// decodeObject unmarshals into dst with numbers preserved as json.Number so
// integer fields can reject fractional values.
func decodeObject(s string, dst any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func validConfidence(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 1
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxErrSnippet {
		return s[:maxErrSnippet] + "..."
	}
	return s
}
