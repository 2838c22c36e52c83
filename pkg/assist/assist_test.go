package assist_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/agenthands/quanta/pkg/assist"
	"github.com/agenthands/quanta/pkg/compiler/parser"
)

// scripted replays canned replies and records the prompts it was given.
type scripted struct {
	replies []string
	prompts []string
}

func (s *scripted) Generate(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.replies) == 0 {
		return "", errors.New("out of replies")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func TestDraftFirstTry(t *testing.T) {
	model := &scripted{replies: []string{"Sure!\n```quanta\nrepeat 2 write 1 end\n```\n"}}
	d := &assist.Drafter{Model: model}

	draft, err := d.Draft(context.Background(), "print 1 twice")
	if err != nil {
		t.Fatal(err)
	}
	if draft.Attempts != 1 || draft.Source != "repeat 2 write 1 end" {
		t.Errorf("unexpected draft %+v", draft)
	}
	if draft.Target != "for _ in range(int(2)):\n    print(1)" {
		t.Errorf("unexpected target %q", draft.Target)
	}
}

func TestDraftRetriesWithFeedback(t *testing.T) {
	model := &scripted{replies: []string{
		"```quanta\nif 1 write 1\n```",
		"```quanta\nif 1 write 1 end\n```",
	}}
	d := &assist.Drafter{Model: model, MaxAttempts: 3}

	draft, err := d.Draft(context.Background(), "task")
	if err != nil {
		t.Fatal(err)
	}
	if draft.Attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", draft.Attempts)
	}
	if len(model.prompts) != 2 || !strings.Contains(model.prompts[1], "UnexpectedEndOfInput") {
		t.Errorf("second prompt should carry the compiler error, got %q", model.prompts)
	}
}

func TestDraftGivesUp(t *testing.T) {
	model := &scripted{replies: []string{"let", "let", "let"}}
	d := &assist.Drafter{Model: model, MaxAttempts: 2}

	_, err := d.Draft(context.Background(), "task")
	if !errors.Is(err, assist.ErrNoProgram) {
		t.Fatalf("expected ErrNoProgram, got %v", err)
	}
	var pe *parser.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("the last compiler error should be wrapped, got %v", err)
	}
	if len(model.prompts) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(model.prompts))
	}
}

func TestDraftModelError(t *testing.T) {
	d := &assist.Drafter{Model: &scripted{}}
	if _, err := d.Draft(context.Background(), "task"); err == nil || errors.Is(err, assist.ErrNoProgram) {
		t.Errorf("expected the model error, got %v", err)
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "  write 1 \n", "write 1"},
		{"Fenced With Language", "here:\n```quanta\nwrite 1\n```\nbye", "write 1"},
		{"Fenced Bare", "```\nwrite 2\n```", "write 2"},
		{"Thinking", "<thinking>```no```</thinking>write 3", "write 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := assist.ExtractCode(tt.in); got != tt.want {
				t.Errorf("ExtractCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := assist.APIKeyFromEnv(); !errors.Is(err, assist.ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}

	t.Setenv("GOOGLE_API_KEY", "g")
	if key, _ := assist.APIKeyFromEnv(); key != "g" {
		t.Errorf("expected GOOGLE_API_KEY fallback, got %q", key)
	}

	t.Setenv("GEMINI_API_KEY", "m")
	if key, _ := assist.APIKeyFromEnv(); key != "m" {
		t.Errorf("expected GEMINI_API_KEY to win, got %q", key)
	}
}
