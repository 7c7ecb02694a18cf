package transpiler

// LineMap records, for every line of transpiled output, the original source
// line it came from. Synthesized lines (closing braces) map to the source
// line that forced them, so every output position resolves to a real input
// position for diagnostics.
type LineMap struct {
	File  string
	Lines []int // Lines[i] = 1-based source line of output line i+1
}

// Lookup resolves a 1-based output line to the original file and line.
// Out-of-range lookups return the line unchanged rather than failing, so a
// caller patching foreign diagnostics can always proceed.
func (m *LineMap) Lookup(outLine int) (string, int) {
	if outLine >= 1 && outLine <= len(m.Lines) {
		return m.File, m.Lines[outLine-1]
	}
	return m.File, outLine
}

// Len returns the number of mapped output lines.
func (m *LineMap) Len() int {
	return len(m.Lines)
}
