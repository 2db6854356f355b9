package testhelpers

import "context"

// StubProvider is an llm.Provider driven by a function.
type StubProvider struct {
	Name string
	Fn   func(ctx context.Context, prompt string) (string, error)
}

func (s *StubProvider) SendPrompt(ctx context.Context, prompt string) (string, error) {
	return s.Fn(ctx, prompt)
}

func (s *StubProvider) GetProviderName() string {
	if s.Name == "" {
		return "stub"
	}
	return s.Name
}

// Reply returns a provider that always answers with text.
func Reply(text string) *StubProvider {
	return &StubProvider{Fn: func(context.Context, string) (string, error) { return text, nil }}
}

// Fail returns a provider that always fails with err.
func Fail(err error) *StubProvider {
	return &StubProvider{Fn: func(context.Context, string) (string, error) { return "", err }}
}
