package telegram

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitMessage(t *testing.T) {
	if parts := SplitMessage("short", 10); len(parts) != 1 || parts[0] != "short" {
		t.Errorf("expected single part, got %q", parts)
	}

	text := strings.Repeat("ab\n", 10) // 30 runes
	parts := SplitMessage(text, 10)
	if strings.Join(parts, "") != text {
		t.Fatalf("parts do not reassemble the text: %q", parts)
	}
	for _, p := range parts {
		if n := utf8.RuneCountInString(p); n > 10 {
			t.Errorf("part longer than limit: %d runes", n)
		}
		if !strings.HasSuffix(p, "\n") {
			t.Errorf("expected split at newline, got %q", p)
		}
	}

	cjk := strings.Repeat("你", 25)
	parts = SplitMessage(cjk, 10)
	if len(parts) != 3 || utf8.RuneCountInString(parts[2]) != 5 {
		t.Errorf("expected rune-based split into 10/10/5, got %d parts", len(parts))
	}
}

func TestSplitMessage_PrefersParagraphs(t *testing.T) {
	text := "first line\nsecond\n\nthird part here"
	parts := SplitMessage(text, 24)
	if len(parts) != 2 || parts[0] != "first line\nsecond\n\n" || parts[1] != "third part here" {
		t.Errorf("expected paragraph split, got %q", parts)
	}

	words := "one two three four"
	parts = SplitMessage(words, 10)
	if strings.Join(parts, "") != words || parts[0] != "one two " {
		t.Errorf("expected word split, got %q", parts)
	}
}

func TestFixMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"use `code", "use `code`"},
		{"```go\nfmt.Println()", "```go\nfmt.Println()\n```"},
		{"`a` and `b`", "`a` and `b`"},
	}
	for _, tt := range tests {
		if got := FixMarkdown(tt.in); got != tt.want {
			t.Errorf("FixMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChoiceRows(t *testing.T) {
	choices := []Choice{
		{Value: "plain", Label: "Plain", Data: "mode_plain"},
		{Value: "advanced", Label: "Advanced", Data: "mode_advanced"},
		{Value: "cbt", Label: "CBT", Data: "mode_cbt"},
	}
	rows := ChoiceRows(choices, "cbt", 2)
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", rows)
	}
	if b := rows[1][0]; b.Text != "✅ CBT" || b.CallbackData != "mode_cbt" {
		t.Errorf("expected selected marker, got %+v", rows[1][0])
	}
	if rows[0][0].Text != "Plain" {
		t.Errorf("unselected choice must not be marked, got %q", rows[0][0].Text)
	}
}
