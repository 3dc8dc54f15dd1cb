package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SystemPrompt instructs the model to grade a compliance form.
const SystemPrompt = `You are a meticulous healthcare-compliance analyst.
Your job is to read the text of a compliance form and decide whether it has been filled out correctly.
The user message will contain the complete form.
Sections will be separated by an html comment <!-- comment -->.
Some sections will be general instructions, others will contain fields that need to be filled out, and others should be left blank.
Your output should be in the following json format {"correct": boolean, "reasoning": string}`

var (
	// ErrNotConfigured is returned by the placeholder grader.
	ErrNotConfigured = errors.New("llm grader not configured")
	// ErrSchemaMismatch is returned when the model output is not a verdict.
	ErrSchemaMismatch = errors.New("llm output does not match verdict schema")
)

// Verdict is the model's judgement of a form.
type Verdict struct {
	Correct   bool   `json:"correct"`
	Reasoning string `json:"reasoning"`
}

// Grader decides whether document text describes a correctly completed form.
type Grader interface {
	Grade(ctx context.Context, documentText string) (Verdict, error)
}

// ParseVerdict decodes {"correct": bool, "reasoning": string}, tolerating a
// fenced code block around the JSON.
func ParseVerdict(raw string) (Verdict, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var probe struct {
		Correct   *bool   `json:"correct"`
		Reasoning *string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(clean), &probe); err != nil {
		return Verdict{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if probe.Correct == nil {
		return Verdict{}, fmt.Errorf("%w: missing correct", ErrSchemaMismatch)
	}
	v := Verdict{Correct: *probe.Correct}
	if probe.Reasoning != nil {
		v.Reasoning = *probe.Reasoning
	}
	return v, nil
}

// PlaceholderGrader stands in when no provider is configured.
type PlaceholderGrader struct{}

// Grade returns ErrNotConfigured.
func (PlaceholderGrader) Grade(context.Context, string) (Verdict, error) {
	return Verdict{}, ErrNotConfigured
}
