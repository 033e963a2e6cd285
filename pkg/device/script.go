package device

import "strings"

// SplitBatches splits a script into batches on lines holding only the
// delimiter, compared case-insensitively. Empty batches are dropped.
func SplitBatches(script, delimiter string) []string {
	var (
		batches []string
		current strings.Builder
	)
	flush := func() {
		if b := strings.TrimSpace(current.String()); b != "" {
			batches = append(batches, b)
		}
		current.Reset()
	}
	for _, line := range strings.Split(strings.ReplaceAll(script, "\r\n", "\n"), "\n") {
		if strings.EqualFold(strings.TrimSpace(line), delimiter) {
			flush()
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush()
	return batches
}
