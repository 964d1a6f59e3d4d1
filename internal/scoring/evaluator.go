// Package scoring implements the wiring-layout scoring pipeline: build the
// rubric prompt, send the diagram image(s) to a vision model, and turn the
// free-text answer into a bounded integer score.
package scoring

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/imageutil"
	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/openai"
)

// Reserved score values. ScoreManual is an out-of-band signal, not a score:
// no automated evaluation was attempted. ScoreDefault is returned whenever
// the model was reached but no valid score could be extracted.
const (
	ScoreManual  = -1
	ScoreDefault = 50
)

// Source classifies where a score came from.
type Source string

const (
	SourceManual        Source = "manual"        // no credential, nothing attempted
	SourcePattern       Source = "pattern"       // extracted from the primary answer
	SourceClarification Source = "clarification" // extracted from the clarification reply
	SourceDefault       Source = "default"       // transport or parse failure absorbed
)

// Result is the outcome of one evaluation.
type Result struct {
	Score  int
	Source Source
	Answer string // raw primary answer, empty when no call was made
}

// Completer is the slice of the API client the evaluator needs.
type Completer interface {
	Authorized() bool
	Complete(ctx context.Context, messages []openai.Message, maxTokens int) (string, error)
}

// Evaluator scores wiring diagrams through a vision-capable chat model.
type Evaluator struct {
	client           Completer
	logger           *slog.Logger
	out              io.Writer
	maxTokens        int
	clarifyMaxTokens int
}

// NewEvaluator creates an evaluator. Progress text (the model's raw answer,
// extraction notices) is written to out; structured diagnostics go to the
// logger.
func NewEvaluator(client Completer, logger *slog.Logger, out io.Writer, maxTokens, clarifyMaxTokens int) *Evaluator {
	return &Evaluator{
		client:           client,
		logger:           logger,
		out:              out,
		maxTokens:        maxTokens,
		clarifyMaxTokens: clarifyMaxTokens,
	}
}

// Evaluate scores the diagram at imagePath. When beforePath is non-empty the
// pair is judged in comparison mode and the score measures improvement.
//
// Failure handling is deliberately asymmetric: an unreadable image file is
// returned as an error, while transport and extraction failures are absorbed
// into a ScoreDefault result so that a flaky model or network never breaks
// the caller.
func (e *Evaluator) Evaluate(ctx context.Context, imagePath, beforePath string) (Result, error) {
	comparison := beforePath != ""
	prompt := BuildPrompt(comparison)

	// Credential check comes before any file access or network traffic.
	if !e.client.Authorized() {
		fmt.Fprintln(e.out, "NO_API_KEY: no API credential available. Switching to manual evaluation.")
		e.logger.Warn("no API credential, manual evaluation required")
		return Result{Score: ScoreManual, Source: SourceManual}, nil
	}

	parts := []openai.ContentPart{openai.TextPart(prompt)}

	uri, err := imageutil.EncodeDataURI(imagePath)
	if err != nil {
		return Result{}, err
	}
	parts = append(parts, openai.ImagePart(uri))

	if comparison {
		beforeURI, err := imageutil.EncodeDataURI(beforePath)
		if err != nil {
			return Result{}, err
		}
		parts = append(parts, openai.ImagePart(beforeURI))
	}

	messages := []openai.Message{{Role: "user", Content: parts}}

	answer, err := e.client.Complete(ctx, messages, e.maxTokens)
	if err != nil {
		e.logger.Error("evaluation request failed", "error", err)
		fmt.Fprintf(e.out, "Error: %v\n", err)
		return Result{Score: ScoreDefault, Source: SourceDefault}, nil
	}

	fmt.Fprintln(e.out, "AI Evaluation:")
	fmt.Fprintln(e.out, answer)

	if score, ok := ExtractScore(answer); ok {
		fmt.Fprintf(e.out, "Extracted score: %d\n", score)
		return Result{Score: score, Source: SourcePattern, Answer: answer}, nil
	}

	return e.clarify(ctx, prompt, answer)
}

// clarify replays the conversation and asks for a bare number. Any failure
// here lands on the default score.
func (e *Evaluator) clarify(ctx context.Context, prompt, answer string) (Result, error) {
	e.logger.Debug("no score pattern matched, requesting clarification")

	messages := []openai.Message{
		{Role: "user", Content: []openai.ContentPart{openai.TextPart(prompt)}},
		{Role: "assistant", Content: answer},
		{Role: "user", Content: clarificationPrompt},
	}

	reply, err := e.client.Complete(ctx, messages, e.clarifyMaxTokens)
	if err != nil {
		e.logger.Error("clarification request failed", "error", err)
		fmt.Fprintf(e.out, "Error: %v\n", err)
		return Result{Score: ScoreDefault, Source: SourceDefault, Answer: answer}, nil
	}

	fmt.Fprintln(e.out, "AI Clarification:")
	fmt.Fprintln(e.out, reply)

	if score, ok := ExtractClarifiedScore(reply); ok {
		fmt.Fprintf(e.out, "Extracted score from clarification: %d\n", score)
		return Result{Score: score, Source: SourceClarification, Answer: answer}, nil
	}

	fmt.Fprintln(e.out, "Could not extract a valid score, using default value of 50")
	e.logger.Warn("no valid score extracted, falling back to default", "default", ScoreDefault)
	return Result{Score: ScoreDefault, Source: SourceDefault, Answer: answer}, nil
}

// Mode names the operating mode for history records.
func Mode(comparison bool) string {
	if comparison {
		return "improvement"
	}
	return "quality"
}
