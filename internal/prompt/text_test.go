package prompt

import (
	"os"
	"testing"
)

func TestCountChars(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"hello", 5},
		{"日本語", 3},
		{"emoji 🎉", 7},
	}

	for _, tt := range tests {
		if got := CountChars(tt.input); got != tt.want {
			t.Errorf("CountChars(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestCountWords(t *testing.T) {
	if got := CountWords("  one two\n\tthree  "); got != 3 {
		t.Errorf("CountWords() = %d, want 3", got)
	}
}

func TestEstimateTokensByWords(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   ", 0},
		{"hello", 2},                   // 1 * 1.3 = 1.3 -> 2
		{"hello world", 3},             // 2 * 1.3 = 2.6 -> 3
		{"one two three four five", 7}, // 5 * 1.3 = 6.5 -> 7
		{"a b c d e f g h i j", 13},    // 10 * 1.3 = 13
	}

	for _, tt := range tests {
		if got := estimateTokensByWords(tt.input); got != tt.want {
			t.Errorf("estimateTokensByWords(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestEstimateTokens_Positive(t *testing.T) {
	if got := EstimateTokens("You are a helpful assistant."); got <= 0 {
		t.Errorf("EstimateTokens() = %d, want > 0", got)
	}
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(\"\") = %d, want 0", got)
	}
}

func TestMain(m *testing.M) {
	// Keep tests offline: the BPE download is skipped in favor of the word estimate.
	os.Setenv("PROMPTEVAL_TOKENIZER", "off")
	os.Exit(m.Run())
}
