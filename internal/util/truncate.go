package util

// TruncationMarker separates the head and tail segments when long text is
// shortened for a prompt.
const TruncationMarker = "\n\n...TRUNCATED...\n\n"

// TruncateMiddle caps text at maxChars by keeping the first and last
// maxChars/2 characters joined by TruncationMarker. Text at or under the cap
// is returned unmodified.
func TruncateMiddle(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	half := maxChars / 2
	return text[:half] + TruncationMarker + text[len(text)-half:]
}
