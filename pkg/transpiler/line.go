package transpiler

import "strings"

// LogicalLine is one statement's worth of tokens: a maximal run between
// newlines whose net paren/bracket depth is zero at the boundary and which
// does not end on a continuation operator or start-of-next-line continuer.
// The trailing NEWLINE token, when present, is part of the run.
type LogicalLine struct {
	Tokens    []Token
	StartLine int

	sig []Token // cached significant tokens
}

// Significant returns the tokens that take part in structural decisions:
// no whitespace, newlines or comments.
func (ll *LogicalLine) Significant() []Token {
	if ll.sig == nil {
		for _, t := range ll.Tokens {
			if t.significant() && t.Type != EOF {
				ll.sig = append(ll.sig, t)
			}
		}
		if ll.sig == nil {
			ll.sig = []Token{}
		}
	}
	return ll.sig
}

// Text reconstructs the exact source text of the line, newlines included.
func (ll *LogicalLine) Text() string {
	var b strings.Builder
	for _, t := range ll.Tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// LeadingWS returns the original leading whitespace of the first physical
// line, for reuse on synthesized closing braces.
func (ll *LogicalLine) LeadingWS() string {
	if len(ll.Tokens) > 0 && ll.Tokens[0].Type == WS {
		return ll.Tokens[0].Text
	}
	return ""
}

// Indent computes the indentation width of the first physical line with
// tabs expanded to tabWidth columns.
func (ll *LogicalLine) Indent(tabWidth int) int {
	w := 0
	for _, r := range ll.LeadingWS() {
		if r == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

func (ll *LogicalLine) IsBlank() bool {
	return len(ll.Significant()) == 0 && !ll.hasComment()
}

func (ll *LogicalLine) IsCommentOnly() bool {
	return len(ll.Significant()) == 0 && ll.hasComment()
}

func (ll *LogicalLine) hasComment() bool {
	for _, t := range ll.Tokens {
		if t.Type == LINE_COMMENT || t.Type == BLOCK_COMMENT {
			return true
		}
	}
	return false
}

// IsDirective reports a pure preprocessor line.
func (ll *LogicalLine) IsDirective() bool {
	sig := ll.Significant()
	return len(sig) == 1 && sig[0].Type == DIRECTIVE
}

func (ll *LogicalLine) EndsWithColon() bool {
	sig := ll.Significant()
	return len(sig) > 0 && sig[len(sig)-1].Type == COLON
}

func (ll *LogicalLine) EndsWithOpenBrace() bool {
	sig := ll.Significant()
	return len(sig) > 0 && sig[len(sig)-1].Text == "{"
}

func (ll *LogicalLine) firstWord() string {
	sig := ll.Significant()
	if len(sig) == 0 || sig[0].Type != IDENT {
		return ""
	}
	return sig[0].Text
}

// physicalLine is an intermediate grouping unit: tokens up to and including
// one NEWLINE.
type physicalLine struct {
	tokens []Token
	line   int
}

func (p physicalLine) significant() []Token {
	var sig []Token
	for _, t := range p.tokens {
		if t.significant() && t.Type != EOF {
			sig = append(sig, t)
		}
	}
	return sig
}

// GroupLines merges the token stream into logical lines. Continuation is
// forced by: a positive bracket depth at the newline, a trailing
// binary/assignment operator or comma, a next line led by a continuation
// starter (including adjacent string literals), or a parenless for-header
// that has not yet reached its terminating colon or brace.
func GroupLines(tokens []Token) []*LogicalLine {
	var phys []physicalLine
	cur := physicalLine{line: 1}
	if len(tokens) > 0 {
		cur.line = tokens[0].StartLine
	}
	for _, t := range tokens {
		if t.Type == EOF {
			break
		}
		cur.tokens = append(cur.tokens, t)
		if t.Type == NEWLINE {
			phys = append(phys, cur)
			cur = physicalLine{line: t.StartLine + 1}
		}
	}
	if len(cur.tokens) > 0 {
		phys = append(phys, cur)
	}

	var logical []*LogicalLine
	for i := 0; i < len(phys); {
		ll := &LogicalLine{StartLine: phys[i].line}
		ll.Tokens = append(ll.Tokens, phys[i].tokens...)
		for i+1 < len(phys) {
			if !continuesTo(ll, phys[i+1]) {
				break
			}
			i++
			ll.Tokens = append(ll.Tokens, phys[i].tokens...)
			ll.sig = nil
		}
		logical = append(logical, ll)
		i++
	}
	return logical
}

func continuesTo(ll *LogicalLine, next physicalLine) bool {
	sig := ll.Significant()
	if len(sig) == 0 {
		return false
	}

	// Directive lines handle their own continuation inside the token.
	if sig[0].Type == DIRECTIVE {
		return false
	}

	// Unbalanced parens/brackets at the newline.
	if depthAtEnd(ll.Tokens) > 0 {
		return true
	}

	last := sig[len(sig)-1]
	if last.Type == PUNCT || last.Type == OPEN || last.Type == COLON {
		switch last.Text {
		case "++", "--":
			// postfix, statement can end here
		default:
			if continuationEnders[last.Text] {
				return true
			}
		}
	}

	// A parenless for-header keeps going until its ':' or '{': its two
	// internal semicolons are separators, not terminators.
	if sig[0].Type == IDENT && sig[0].Text == "for" {
		parenForm := len(sig) > 1 && sig[1].Text == "("
		if !parenForm && last.Text != ":" && last.Text != "{" {
			return true
		}
	}

	nsig := next.significant()
	if len(nsig) == 0 {
		return false
	}
	first := nsig[0]
	if continuationStarters[first.Text] {
		return true
	}
	// adjacent string literal concatenation
	if first.Type == STRING || first.Type == RAWSTR {
		return true
	}
	return false
}

func depthAtEnd(tokens []Token) int {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Type == NEWLINE {
			return tokens[i].Depth
		}
	}
	return 0
}
