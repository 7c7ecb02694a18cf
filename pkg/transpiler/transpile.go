package transpiler

import "strings"

const (
	DefaultTabWidth        = 4
	DefaultDirectiveMarker = '#'
)

// Config controls how a source file is interpreted. The zero value is
// usable; missing fields take the defaults above.
type Config struct {
	// TabWidth is the number of columns a tab character occupies when
	// measuring indentation.
	TabWidth int
	// DirectiveMarker is the character that introduces a preprocessor
	// directive at the beginning of a line.
	DirectiveMarker rune
}

func (c Config) withDefaults() Config {
	if c.TabWidth <= 0 {
		c.TabWidth = DefaultTabWidth
	}
	if c.DirectiveMarker == 0 {
		c.DirectiveMarker = DefaultDirectiveMarker
	}
	return c
}

// Result is the output of one transpilation run.
type Result struct {
	// Output is the generated standard C++ source.
	Output string
	// Map translates output line numbers back to lines of the input file.
	Map *LineMap
}

// Transpile converts indentation-structured source into standard C++.
// Blocks opened by a trailing colon become brace-delimited, statement
// terminators and control-condition parentheses are synthesized, and
// regions already written with explicit braces pass through unchanged.
// All reported positions refer to the original source.
func Transpile(file, src string, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()

	tokens, err := Scan(file, src, cfg.DirectiveMarker)
	if err != nil {
		return nil, err
	}

	b := &builder{
		cfg:          cfg,
		file:         file,
		lines:        GroupLines(tokens),
		finalNewline: strings.HasSuffix(src, "\n"),
	}
	// closers synthesized at end of input map to the last real source line
	if n := len(tokens); n > 1 {
		b.eofLine = tokens[n-2].StartLine
	} else if n == 1 {
		b.eofLine = tokens[0].StartLine
	}
	if err := b.run(); err != nil {
		return nil, err
	}

	// Windows sources keep their line terminator, so explicit input stays
	// byte-identical.
	nl := "\n"
	if strings.Contains(src, "\r\n") {
		nl = "\r\n"
	}
	out := strings.Join(b.out, nl)
	if b.finalNewline && len(b.out) > 0 {
		out += nl
	}
	return &Result{
		Output: out,
		Map:    &LineMap{File: file, Lines: b.mapLines},
	}, nil
}
