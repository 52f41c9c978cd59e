package fabric

import (
	"strings"
	"unicode/utf8"
)

// Manifest lines are limited to 72 bytes including the line break.
const (
	firstLineWidth        = 70
	continuationLineWidth = 69
)

// ManifestBuilder accumulates manifest headers, folding long ones.
type ManifestBuilder struct {
	lines []string
}

func NewManifestBuilder() *ManifestBuilder {
	return &ManifestBuilder{lines: []string{"Manifest-Version: 1.0"}}
}

// Add appends a "Name: value" header line.
func (m *ManifestBuilder) Add(line string) {
	m.lines = append(m.lines, FoldManifestLine(line)...)
}

// String joins the lines with "\n" and ends with a newline.
func (m *ManifestBuilder) String() string {
	return strings.Join(m.lines, "\n") + "\n"
}

// FoldManifestLine splits s into a first line of at most 70 bytes and
// continuation lines of a leading space plus at most 69 bytes. Lines are
// only cut between runes, so a line may fall a few bytes short.
func FoldManifestLine(s string) []string {
	if len(s) <= firstLineWidth {
		return []string{s}
	}

	n := cutAt(s, firstLineWidth)
	out := []string{s[:n]}
	for rest := s[n:]; rest != ""; {
		n := cutAt(rest, continuationLineWidth)
		out = append(out, " "+rest[:n])
		rest = rest[n:]
	}
	return out
}

// cutAt is the longest prefix length of s, at most limit, ending on a rune
// boundary.
func cutAt(s string, limit int) int {
	if len(s) <= limit {
		return len(s)
	}
	n := limit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
