package scoring

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/openai"
)

// fakeClient scripts successive Complete calls and records what it was sent.
type fakeClient struct {
	authorized bool
	replies    []string
	errs       []error
	calls      int
	messages   [][]openai.Message
	maxTokens  []int
}

func (f *fakeClient) Authorized() bool { return f.authorized }

func (f *fakeClient) Complete(ctx context.Context, messages []openai.Message, maxTokens int) (string, error) {
	i := f.calls
	f.calls++
	f.messages = append(f.messages, messages)
	f.maxTokens = append(f.maxTokens, maxTokens)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return "", fmt.Errorf("unexpected call %d", i)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTempImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not really a png"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestEvaluator(client Completer, out io.Writer) *Evaluator {
	return NewEvaluator(client, testLogger(), out, 1000, 50)
}

// countImageParts counts image_url entries across a message list.
func countImageParts(messages []openai.Message) int {
	n := 0
	for _, m := range messages {
		parts, ok := m.Content.([]openai.ContentPart)
		if !ok {
			continue
		}
		for _, p := range parts {
			if p.Type == "image_url" {
				n++
			}
		}
	}
	return n
}

func TestEvaluateNoCredential(t *testing.T) {
	client := &fakeClient{authorized: false}
	var out bytes.Buffer
	ev := newTestEvaluator(client, &out)

	// A nonexistent path: with no credential, the file must never be read.
	result, err := ev.Evaluate(context.Background(), "does-not-exist.png", "")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Score != ScoreManual || result.Source != SourceManual {
		t.Errorf("got score=%d source=%s, want %d/%s", result.Score, result.Source, ScoreManual, SourceManual)
	}
	if client.calls != 0 {
		t.Errorf("expected no network calls, got %d", client.calls)
	}
	if !strings.Contains(out.String(), "NO_API_KEY") {
		t.Error("expected NO_API_KEY diagnostic on output")
	}
}

func TestEvaluatePrimaryExtraction(t *testing.T) {
	client := &fakeClient{authorized: true, replies: []string{"配線は良好です。スコア: 85/100"}}
	var out bytes.Buffer
	ev := newTestEvaluator(client, &out)

	result, err := ev.Evaluate(context.Background(), writeTempImage(t, "current.png"), "")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Score != 85 || result.Source != SourcePattern {
		t.Errorf("got score=%d source=%s, want 85/%s", result.Score, result.Source, SourcePattern)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 call, got %d", client.calls)
	}
	if countImageParts(client.messages[0]) != 1 {
		t.Errorf("expected 1 image part, got %d", countImageParts(client.messages[0]))
	}
	if client.maxTokens[0] != 1000 {
		t.Errorf("primary call max tokens = %d, want 1000", client.maxTokens[0])
	}
	if !strings.Contains(out.String(), "Extracted score: 85") {
		t.Error("expected extraction notice on output")
	}
}

func TestEvaluateComparisonMode(t *testing.T) {
	client := &fakeClient{authorized: true, replies: []string{"72/100"}}
	var out bytes.Buffer
	ev := newTestEvaluator(client, &out)

	current := writeTempImage(t, "after.png")
	before := writeTempImage(t, "before.png")

	result, err := ev.Evaluate(context.Background(), current, before)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if result.Score != 72 {
		t.Errorf("score = %d, want 72", result.Score)
	}
	if got := countImageParts(client.messages[0]); got != 2 {
		t.Errorf("expected 2 image parts in comparison mode, got %d", got)
	}

	// The prompt must be the improvement variant.
	parts := client.messages[0][0].Content.([]openai.ContentPart)
	if !strings.Contains(parts[0].Text, "改善度") {
		t.Error("comparison-mode prompt should ask for an improvement score")
	}
}

func TestEvaluateClarification(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		err        error
		wantScore  int
		wantSource Source
	}{
		{"in-range number accepted", "72", nil, 72, SourceClarification},
		{"out-of-range rejected", "150", nil, ScoreDefault, SourceDefault},
		{"no number", "数値では表せません", nil, ScoreDefault, SourceDefault},
		{"transport failure", "", fmt.Errorf("connection reset"), ScoreDefault, SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{
				authorized: true,
				replies:    []string{"スコアの明示はできません。", tt.reply},
				errs:       []error{nil, tt.err},
			}
			var out bytes.Buffer
			ev := newTestEvaluator(client, &out)

			result, err := ev.Evaluate(context.Background(), writeTempImage(t, "current.png"), "")
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if result.Score != tt.wantScore || result.Source != tt.wantSource {
				t.Errorf("got score=%d source=%s, want %d/%s", result.Score, result.Source, tt.wantScore, tt.wantSource)
			}
			if client.calls != 2 {
				t.Errorf("expected 2 calls (primary + clarification), got %d", client.calls)
			}
			if client.maxTokens[1] != 50 {
				t.Errorf("clarification max tokens = %d, want 50", client.maxTokens[1])
			}

			// The clarification replays the conversation history.
			clarify := client.messages[1]
			if len(clarify) != 3 {
				t.Fatalf("clarification message count = %d, want 3", len(clarify))
			}
			if clarify[1].Role != "assistant" {
				t.Errorf("second clarification message role = %s, want assistant", clarify[1].Role)
			}
		})
	}
}

func TestEvaluatePrimaryTransportFailure(t *testing.T) {
	client := &fakeClient{authorized: true, errs: []error{fmt.Errorf("dial tcp: timeout")}}
	var out bytes.Buffer
	ev := newTestEvaluator(client, &out)

	result, err := ev.Evaluate(context.Background(), writeTempImage(t, "current.png"), "")
	if err != nil {
		t.Fatalf("transport failures must be absorbed, got error %v", err)
	}
	if result.Score != ScoreDefault || result.Source != SourceDefault {
		t.Errorf("got score=%d source=%s, want %d/%s", result.Score, result.Source, ScoreDefault, SourceDefault)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 call, got %d", client.calls)
	}
}

func TestEvaluateUnreadableImageIsFatal(t *testing.T) {
	client := &fakeClient{authorized: true}
	var out bytes.Buffer
	ev := newTestEvaluator(client, &out)

	_, err := ev.Evaluate(context.Background(), filepath.Join(t.TempDir(), "missing.png"), "")
	if err == nil {
		t.Fatal("expected an error for an unreadable image file")
	}
	if client.calls != 0 {
		t.Errorf("expected no network calls, got %d", client.calls)
	}
}
