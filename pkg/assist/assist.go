// Package assist drafts Quanta programs with a language model and keeps
// asking until the compiler accepts one.
package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/quanta/pkg/compiler"
)

const DefaultAttempts = 3

var ErrNoProgram = errors.New("assist: model produced no compilable program")

// SystemPrompt teaches the model the language.
const SystemPrompt = `You write programs in Quanta, a tiny teaching language.

Statements:
  let NAME = EXPRESSION     declare or reassign a variable (the value is optional)
  write EXPRESSION          print a value
  if EXPRESSION ... elif EXPRESSION ... else ... end
  repeat EXPRESSION ... end run the body that many times

Expressions are written inline and may use numbers, "double quoted strings",
variable names and the operators + - * / = < > & |. There are no parentheses,
no functions and no escapes inside strings. Keywords are lowercase.

Reply with the program only, inside a single ` + "```quanta" + ` code block.`

// Model is anything that turns a prompt into text.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Draft is an accepted program.
type Draft struct {
	Source   string
	Target   string
	Attempts int
}

type Drafter struct {
	Model       Model
	MaxAttempts int
}

// Draft asks the model for a program solving task. Each rejected program is
// sent back with the compiler's error.
func (d *Drafter) Draft(ctx context.Context, task string) (*Draft, error) {
	attempts := d.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}

	prompt := "Task: " + task
	var lastErr error
	for i := 1; i <= attempts; i++ {
		text, err := d.Model.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("assist: generate: %w", err)
		}

		src := ExtractCode(text)
		target, err := compiler.Compile(src)
		if err == nil {
			return &Draft{Source: src, Target: target, Attempts: i}, nil
		}

		lastErr = err
		prompt = fmt.Sprintf("Task: %s\n\nYour previous program:\n```quanta\n%s\n```\nwas rejected by the compiler: %v\nFix it.", task, src, err)
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrNoProgram, attempts, lastErr)
}

// ExtractCode pulls the program out of a model reply: the first fenced block
// if there is one, otherwise the whole reply.
func ExtractCode(text string) string {
	if _, after, ok := strings.Cut(text, "</thinking>"); ok {
		text = after
	}

	if _, after, ok := strings.Cut(text, "```"); ok {
		// drop the info string, if any
		if nl := strings.IndexByte(after, '\n'); nl >= 0 && !strings.Contains(after[:nl], " ") {
			after = after[nl+1:]
		}
		block, _, _ := strings.Cut(after, "```")
		text = block
	}
	return strings.TrimSpace(text)
}
