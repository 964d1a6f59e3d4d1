package scoring

import (
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	single := BuildPrompt(false)
	comparison := BuildPrompt(true)

	// Both modes carry the full rubric.
	for _, prompt := range []string{single, comparison} {
		if !strings.Contains(prompt, "【配線最適化の原則】") {
			t.Error("prompt missing optimization principles")
		}
		if !strings.Contains(prompt, "【重要なルール】") {
			t.Error("prompt missing hard rules")
		}
		if !strings.Contains(prompt, "0〜100") {
			t.Error("prompt missing score range instruction")
		}
	}

	// Single-image mode asks for layout quality.
	if !strings.Contains(single, "配線の品質を評価") {
		t.Error("single-image prompt should ask for a quality evaluation")
	}
	if strings.Contains(single, "改善度") {
		t.Error("single-image prompt should not mention improvement")
	}

	// Comparison mode asks for an improvement score over the pair.
	if !strings.Contains(comparison, "最適化前後の画像") {
		t.Error("comparison prompt should mention the before/after pair")
	}
	if !strings.Contains(comparison, "改善度を0〜100の範囲でスコア付け") {
		t.Error("comparison prompt should ask for an improvement score")
	}
}
