// Package sanitizer turns free-text LLM replies into JSON values.
//
// Models do not reliably honour "return only JSON" instructions, so every reply is
// cleaned of fence markup before it is parsed. No schema validation happens here:
// a parsed value missing fields is handed back to the caller unchanged.
package sanitizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedAIResponse is returned when a reply holds no parseable JSON value.
var ErrMalformedAIResponse = errors.New("malformed AI response")

// removed anywhere in the reply, longest marker first
var markers = []string{"json", "```", "`"}

// Clean trims the reply and strips every "json" literal and backtick fence from it.
func Clean(raw string) string {
	text := strings.TrimSpace(raw)
	for _, m := range markers {
		text = strings.ReplaceAll(text, m, "")
	}
	return text
}

// ExtractArray parses the span from the first '[' to the last ']' of the cleaned reply into out.
func ExtractArray(raw string, out any) error {
	text := Clean(raw)
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end < start {
		return fmt.Errorf("%w: no JSON array found in response", ErrMalformedAIResponse)
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAIResponse, err)
	}
	return nil
}

// ParseObject parses the whole cleaned reply into out.
func ParseObject(raw string, out any) error {
	text := Clean(raw)
	if text == "" {
		return fmt.Errorf("%w: empty response", ErrMalformedAIResponse)
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: invalid JSON format: %v", ErrMalformedAIResponse, err)
	}
	return nil
}
