package composer

import "strings"

// stripCodeFence removes a surrounding markdown code fence (with an optional
// language tag) from a model response. Anything that does not look like a
// fenced block is returned unchanged: detection failure means "no fence",
// never a parse error. Backticks inside the fenced content are preserved.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	// Drop the opening fence line, language tag included ("```json").
	rest := trimmed[3:]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		// Everything on the fence line before the newline is a language tag;
		// if it contains spaces it is content, not a tag, so keep it.
		tag := strings.TrimSpace(rest[:idx])
		if tag == "" || !strings.ContainsAny(tag, " \t{[") {
			rest = rest[idx+1:]
		}
	} else {
		// Single-line response like "```json {...} ```".
		rest = strings.TrimPrefix(rest, "json")
	}

	rest = strings.TrimSpace(rest)
	if strings.HasSuffix(rest, "```") {
		rest = strings.TrimSpace(rest[:len(rest)-3])
	}

	return rest
}
