package layout

import "strings"

// ResolveText extracts the text an anchor references, concatenating all
// segment ranges in order. Out-of-range offsets are clamped rather than
// failed: one bad span must never take down a whole document.
func (a TextAnchor) ResolveText(fullText string) string {
	if len(a.Segments) == 0 || fullText == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range a.Segments {
		start, end := seg.Start, seg.End
		if start < 0 {
			start = 0
		}
		if end > int64(len(fullText)) {
			end = int64(len(fullText))
		}
		if start >= end || start >= int64(len(fullText)) {
			continue
		}
		b.WriteString(fullText[start:end])
	}
	return strings.TrimSpace(b.String())
}
