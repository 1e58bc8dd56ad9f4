package util

import "strings"

// SanitizeText cleans text coming out of PDF extraction before it is stored
// or fed into a prompt. NUL bytes are invalid in Postgres text columns, soft
// hyphens left by line-broken PDFs split words, and other non-printing
// controls are noise.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\u00ad", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}
