package conv

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty input", "", ""},
		{"bold label", "**Context**", "<strong>Context</strong>\n"},
		{"inline code", "`Intent: manual`", "<code>Intent: manual</code>\n"},
		{"header tags stripped", "# Agents", "Agents\n"},
		{"script tags sanitized", "<script>alert('xss')</script>", "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToTelegramHTML([]byte(tt.input))
			if got != tt.expected {
				t.Errorf("MarkdownToTelegramHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSplitMessage(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		got := SplitMessage("hello", 10)
		if len(got) != 1 || got[0] != "hello" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("prefers newline", func(t *testing.T) {
		text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
		got := SplitMessage(text, 10)
		if len(got) != 2 || got[0] != "aaaaaa" || got[1] != "bbbbbb" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("hard cut without newline", func(t *testing.T) {
		got := SplitMessage(strings.Repeat("x", 25), 10)
		if len(got) != 3 || len(got[0]) != 10 || len(got[2]) != 5 {
			t.Errorf("got %q", got)
		}
	})

	t.Run("never splits runes", func(t *testing.T) {
		text := strings.Repeat("é", 20) // 2 bytes each
		for _, chunk := range SplitMessage(text, 9) {
			if !utf8.ValidString(chunk) {
				t.Fatalf("invalid utf8 chunk %q", chunk)
			}
			if len(chunk) > 9 {
				t.Fatalf("chunk too long: %d", len(chunk))
			}
		}
	})
}
