package telegram

import (
	"strings"
	"unicode/utf8"
)

// splitBoundaries are tried in order; the first one found in the back half
// of a chunk wins.
var splitBoundaries = []string{"\n\n", "\n", ". ", " "}

// SplitMessage cuts a reply into chunks of at most maxLen runes. Joining the
// chunks yields the original text.
func SplitMessage(text string, maxLen int) []string {
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	runes := []rune(text)
	for len(runes) > maxLen {
		cut := splitPoint(runes[:maxLen])
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

func splitPoint(window []rune) int {
	chunk := string(window)
	for _, sep := range splitBoundaries {
		idx := strings.LastIndex(chunk, sep)
		if idx < 0 {
			continue
		}
		cut := utf8.RuneCountInString(chunk[:idx+len(sep)])
		if cut > len(window)/2 {
			return cut
		}
	}
	return len(window)
}

// FixMarkdown closes a dangling code fence or inline code span so Telegram
// accepts the message.
func FixMarkdown(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 4)

	inFence, inInline := false, false
	for i := 0; i < len(text); {
		if strings.HasPrefix(text[i:], "```") {
			if inInline {
				b.WriteByte('`')
				inInline = false
			}
			inFence = !inFence
			b.WriteString("```")
			i += 3
			continue
		}
		if text[i] == '`' && !inFence {
			inInline = !inInline
		}
		b.WriteByte(text[i])
		i++
	}

	switch {
	case inFence:
		b.WriteString("\n```")
	case inInline:
		b.WriteByte('`')
	}
	return b.String()
}
