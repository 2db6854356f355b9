package sanitizer

import (
	"errors"
	"testing"
)

type pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func TestClean(t *testing.T) {
	cases := map[string]string{
		"  ```json\n{\"a\":1}\n```  ": "\n{\"a\":1}\n",
		"`{\"a\":1}`":                 "{\"a\":1}",
		"plain":                       "plain",
	}
	for input, want := range cases {
		if got := Clean(input); got != want {
			t.Fatalf("Clean(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractArrayRecoversWrappedArray(t *testing.T) {
	inputs := []string{
		`[{"question":"q1","answer":"a1"},{"question":"q2","answer":"a2"}]`,
		"Here are your questions:\n```json\n[{\"question\":\"q1\",\"answer\":\"a1\"},\n{\"question\":\"q2\",\"answer\":\"a2\"}]\n```\nGood luck!",
		"Sure! ``` [\n  {\"question\": \"q1\", \"answer\": \"a1\"},\n  {\"question\": \"q2\", \"answer\": \"a2\"}\n] ``` Let me know if you need more.",
	}
	for _, input := range inputs {
		var out []pair
		if err := ExtractArray(input, &out); err != nil {
			t.Fatalf("ExtractArray(%q) error: %v", input, err)
		}
		if len(out) != 2 || out[0].Question != "q1" || out[1].Answer != "a2" {
			t.Fatalf("unexpected result for %q: %+v", input, out)
		}
	}
}

func TestExtractArrayFailures(t *testing.T) {
	inputs := []string{
		"Sorry, I can't help.",
		"",
		"] backwards [",
		"[not json at all]",
	}
	for _, input := range inputs {
		var out []pair
		err := ExtractArray(input, &out)
		if !errors.Is(err, ErrMalformedAIResponse) {
			t.Fatalf("ExtractArray(%q) expected ErrMalformedAIResponse, got %v", input, err)
		}
	}
}

func TestParseObject(t *testing.T) {
	var out struct {
		Ratings  int    `json:"ratings"`
		Feedback string `json:"feedback"`
	}
	if err := ParseObject("```json\n{\"ratings\": 7, \"feedback\": \"Good\"}\n```", &out); err != nil {
		t.Fatalf("ParseObject error: %v", err)
	}
	if out.Ratings != 7 || out.Feedback != "Good" {
		t.Fatalf("unexpected object: %+v", out)
	}

	for _, input := range []string{"", "The answer is fine. {\"ratings\": 7}", "Sorry, I can't help."} {
		if err := ParseObject(input, &out); !errors.Is(err, ErrMalformedAIResponse) {
			t.Fatalf("ParseObject(%q) expected ErrMalformedAIResponse, got %v", input, err)
		}
	}
}

func TestParseObjectPassesThroughMissingFields(t *testing.T) {
	var out map[string]any
	if err := ParseObject(`{"score": 3}`, &out); err != nil {
		t.Fatalf("expected parse success, got %v", err)
	}
	if _, ok := out["ratings"]; ok {
		t.Fatalf("did not expect ratings key")
	}
}
