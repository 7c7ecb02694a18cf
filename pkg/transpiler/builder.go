package transpiler

import "strings"

// frame is one active block on the indentation stack.
type frame struct {
	indent     int // indentation width of the block's content; -1 for explicit braces
	style      frameStyle
	ws         string // leading whitespace of the opener line, reused for the closer
	headerLine int
}

// pendingRaw is a buffered blank, comment or directive line. Buffering lets
// synthesized closing braces land before trailing blank lines instead of
// after them.
type pendingRaw struct {
	text   string
	indent int
	src    int
}

// builder walks logical lines and produces output text plus the line map.
// It is the explicit mutable context threaded through every step: frames,
// output buffer and pending lines live here, never in package state.
type builder struct {
	cfg    Config
	file   string
	lines  []*LogicalLine
	idx    int
	frames []frame

	out      []string
	mapLines []int
	pending  []pendingRaw

	eofLine      int
	finalNewline bool
}

func (b *builder) top() *frame {
	return &b.frames[len(b.frames)-1]
}

func (b *builder) pop() frame {
	f := b.frames[len(b.frames)-1]
	b.frames = b.frames[:len(b.frames)-1]
	return f
}

func (b *builder) emitLine(text string, src int) {
	b.out = append(b.out, text)
	b.mapLines = append(b.mapLines, src)
}

func (b *builder) emitCloser(f frame, src int) {
	text := f.ws + "}"
	if f.style.closeSemi {
		text += ";"
	}
	b.emitLine(text, src)
}

// emitTokens serialises a token slice into output lines, recording the
// source line of each emitted physical line. Synthesized tokens carry no
// position; a line consisting only of them maps to fallback.
func (b *builder) emitTokens(tokens []Token, fallback int) {
	cur := ""
	src := 0
	flush := func() {
		if src == 0 {
			src = fallback
		}
		b.emitLine(cur, src)
		cur, src = "", 0
	}
	for _, t := range tokens {
		if t.Type == EOF {
			continue
		}
		if t.Type == NEWLINE {
			flush()
			continue
		}
		parts := strings.Split(t.Text, "\n")
		for pi, p := range parts {
			if pi > 0 {
				flush()
			}
			if pi < len(parts)-1 {
				// the terminator is re-added when lines are joined
				p = strings.TrimSuffix(p, "\r")
			}
			cur += p
			if src == 0 && t.StartLine > 0 {
				src = t.StartLine + pi
			}
		}
	}
	if cur != "" {
		flush()
	}
}

func (b *builder) flushPending() {
	for _, p := range b.pending {
		b.emitLine(p.text, p.src)
	}
	b.pending = nil
}

func (b *builder) emitPendingSlice(ps []pendingRaw) {
	for _, p := range ps {
		b.emitLine(p.text, p.src)
	}
}

func (b *builder) bufferRaw(ll *LogicalLine) {
	indent := ll.Indent(b.cfg.TabWidth)
	text := ll.Text()
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	for i, p := range strings.Split(text, "\n") {
		p = strings.TrimSuffix(p, "\r")
		b.pending = append(b.pending, pendingRaw{text: p, indent: indent, src: ll.StartLine + i})
	}
}

// peekNextSignificant returns the next logical line that carries code,
// skipping blanks, comments and directives.
func (b *builder) peekNextSignificant() (*LogicalLine, bool) {
	for j := b.idx + 1; j < len(b.lines); j++ {
		ll := b.lines[j]
		if ll.IsBlank() || ll.IsCommentOnly() || ll.IsDirective() {
			continue
		}
		return ll, true
	}
	return nil, false
}

func (b *builder) run() error {
	for b.idx = 0; b.idx < len(b.lines); b.idx++ {
		if err := b.process(b.lines[b.idx]); err != nil {
			return err
		}
	}
	return b.finish()
}

func (b *builder) process(ll *LogicalLine) error {
	// Layout-only lines are buffered so closing braces can be placed
	// before them. Directive lines are opaque: no synthesized punctuation,
	// no effect on the indentation stack.
	if ll.IsBlank() || ll.IsCommentOnly() || ll.IsDirective() {
		b.bufferRaw(ll)
		return nil
	}

	doWhile, err := b.popTo(ll)
	if err != nil {
		return err
	}
	if doWhile {
		return b.handleDoWhileTail(ll)
	}

	sig := ll.Significant()
	closes, opens := braceDelta(sig)
	if closes > 0 {
		b.flushPending()
		if err := b.closeExplicit(closes, ll); err != nil {
			return err
		}
	}

	switch {
	case ClassifyColon(ll) == ColonAccessSpec:
		b.handleSection(ll)
	case ClassifyColon(ll) == ColonCaseLabel:
		b.handleSection(ll)
	case ll.EndsWithColon():
		if err := b.handleBlockStart(ll); err != nil {
			return err
		}
	case ll.EndsWithOpenBrace():
		b.handleExplicitHeader(ll)
	default:
		b.handleStatement(ll)
	}

	for ; opens > 0; opens-- {
		b.frames = append(b.frames, frame{
			indent:     -1,
			style:      frameStyle{kind: openerExplicit},
			ws:         ll.LeadingWS(),
			headerLine: ll.StartLine,
		})
	}
	return nil
}

// popTo closes indentation frames until the stack matches the line's
// indentation. An access specifier never closes its class frame; a frame
// opened by an explicit brace is a barrier that indentation cannot pop.
func (b *builder) popTo(ll *LogicalLine) (doWhile bool, err error) {
	indent := ll.Indent(b.cfg.TabWidth)
	if len(b.frames) == 0 {
		return false, nil
	}
	t := b.top()
	if t.style.kind == openerExplicit || t.indent <= indent {
		return false, nil
	}

	// Partition buffered lines: those belonging inside the closing block
	// are emitted before the brace, the rest after.
	contentIndent := t.indent
	var inside, after []pendingRaw
	for _, p := range b.pending {
		if p.indent >= contentIndent || p.indent < indent {
			inside = append(inside, p)
		} else {
			after = append(after, p)
		}
	}
	b.pending = nil
	b.emitPendingSlice(inside)

	isAccess := ClassifyColon(ll) == ColonAccessSpec
	sig := ll.Significant()
	isWhileClause := len(sig) > 0 && sig[0].Type == IDENT && sig[0].Text == "while" &&
		!ll.EndsWithColon() && !ll.EndsWithOpenBrace()

	popped := false
	for len(b.frames) > 0 {
		f := b.top()
		if f.style.kind == openerExplicit || f.indent <= indent {
			break
		}
		if isAccess && f.style.kind == openerType {
			break
		}
		popped = true
		closed := b.pop()
		if isWhileClause && closed.style.kind == openerDo {
			doWhile = true
		}
		if closed.style.kind != openerSection {
			b.emitCloser(closed, ll.StartLine)
		}
	}

	if popped && !isAccess {
		base := 0
		free := false
		if len(b.frames) > 0 {
			if b.top().style.kind == openerExplicit {
				free = true
			} else {
				base = b.top().indent
			}
		}
		if !free && indent != base {
			return false, newError(ErrIndentationMismatch, b.file, ll.StartLine, 1,
				"line indented to width %d, which matches no open block", indent)
		}
	}

	b.emitPendingSlice(after)
	return doWhile, nil
}

// handleDoWhileTail finishes a do block: the dedented while clause gets its
// condition parenthesized and a terminating semicolon.
func (b *builder) handleDoWhileTail(ll *LogicalLine) error {
	toks := ll.Tokens
	sig := ll.Significant()
	stop := len(sig)
	if sig[len(sig)-1].Text == ";" {
		stop--
	}
	toks = wrapSpan(toks, stop)
	if sig[len(sig)-1].Text != ";" {
		toks = appendSemi(toks)
	}
	b.flushPending()
	b.emitTokens(toks, ll.StartLine)
	return nil
}

// handleSection emits a case/default label or access specifier verbatim,
// colon intact. If its body is indented deeper, a section frame tracks the
// dedent back out; sections close without emitting a brace.
func (b *builder) handleSection(ll *LogicalLine) {
	b.flushPending()
	b.emitTokens(ll.Tokens, ll.StartLine)
	indent := ll.Indent(b.cfg.TabWidth)
	if next, ok := b.peekNextSignificant(); ok {
		if n := next.Indent(b.cfg.TabWidth); n > indent {
			b.frames = append(b.frames, frame{
				indent:     n,
				style:      frameStyle{kind: openerSection},
				ws:         ll.LeadingWS(),
				headerLine: ll.StartLine,
			})
		}
	}
}

// handleBlockStart opens an indentation block: the condition is wrapped in
// parentheses when the header is a control structure, and the trailing
// colon becomes the opening brace.
func (b *builder) handleBlockStart(ll *LogicalLine) error {
	style := classifyOpener(ll)
	indent := ll.Indent(b.cfg.TabWidth)

	content := indent + b.cfg.TabWidth // lenient default when the header ends the file
	if next, ok := b.peekNextSignificant(); ok {
		n := next.Indent(b.cfg.TabWidth)
		if n <= indent {
			return newError(ErrExpectedIndent, b.file, next.StartLine, 1,
				"header on line %d opens a block but the next statement is not indented deeper", ll.StartLine)
		}
		content = n
	}

	sig := ll.Significant()
	toks := wrapSpan(ll.Tokens, len(sig)-1)
	toks = replaceTrailingColonWithBrace(toks)

	b.flushPending()
	b.emitTokens(toks, ll.StartLine)
	b.frames = append(b.frames, frame{
		indent:     content,
		style:      style,
		ws:         ll.LeadingWS(),
		headerLine: ll.StartLine,
	})
	return nil
}

// handleExplicitHeader emits a line ending in a literal '{'. Control
// headers still get their condition parenthesized; a dialect colon directly
// before the brace is dropped rather than doubled.
func (b *builder) handleExplicitHeader(ll *LogicalLine) {
	sig := ll.Significant()
	toks := ll.Tokens
	if len(sig) >= 2 && sig[len(sig)-2].Type == COLON {
		toks = dropColonBeforeBrace(toks)
		sig = significantOf(toks)
	}
	toks = wrapSpan(toks, len(sig)-1)
	b.flushPending()
	b.emitTokens(toks, ll.StartLine)
}

// handleStatement terminates a plain statement, synthesizing the missing
// semicolon unless the line is a control header, continues an expression,
// or sits inside an enum body.
func (b *builder) handleStatement(ll *LogicalLine) {
	sig := ll.Significant()

	// "pass" is the placeholder for an intentionally empty block.
	if len(sig) == 1 && sig[0].Type == IDENT && sig[0].Text == "pass" {
		return
	}

	toks := ll.Tokens
	if b.needsSemicolon(sig) {
		toks = appendSemi(toks)
	}
	b.flushPending()
	b.emitTokens(toks, ll.StartLine)
}

func (b *builder) needsSemicolon(sig []Token) bool {
	if len(sig) == 0 {
		return false
	}
	last := sig[len(sig)-1]
	switch last.Text {
	case ";", "{", ":":
		return false
	}
	if last.Type == DIRECTIVE {
		return false
	}

	first := sig[0]
	idx := 0
	if first.Text == "}" && len(sig) > 1 {
		idx = 1
	}
	if sig[idx].Type == IDENT && controlKeywords[sig[idx].Text] {
		// headers never receive a synthesized terminator
		return false
	}
	switch first.Text {
	case ",", ")", "]":
		return false
	}

	if last.Text == "}" {
		// brace initializer or lambda used as a value
		for i, t := range sig {
			if t.Text == "=" && i+1 < len(sig) && sig[i+1].Text == "{" {
				return true
			}
		}
		if hasLambdaPattern(sig) {
			for _, t := range sig {
				if t.Text == "=" {
					return true
				}
			}
			if sig[0].Type == IDENT && sig[0].Text == "return" {
				return true
			}
		}
		return false
	}

	// enum entries are comma-separated, not statements
	for i := len(b.frames) - 1; i >= 0; i-- {
		f := b.frames[i]
		if f.style.kind == openerSection {
			continue
		}
		if f.style.noSemiInside {
			return false
		}
		break
	}
	return true
}

// closeExplicit pops n explicit-brace frames. Indentation blocks still open
// inside a region are closed first, so a synthesized '}' never escapes its
// enclosing literal braces.
func (b *builder) closeExplicit(n int, ll *LogicalLine) error {
	for ; n > 0; n-- {
		for len(b.frames) > 0 && b.top().style.kind != openerExplicit {
			f := b.pop()
			if f.style.kind != openerSection {
				b.emitCloser(f, ll.StartLine)
			}
		}
		if len(b.frames) == 0 {
			return newError(ErrMismatchedBracket, b.file, ll.StartLine, 1, "unmatched %q", "}")
		}
		b.pop()
	}
	return nil
}

// finish drains the stack at end of file. Dedenting to width zero is
// implicit, but a literal '{' that was never closed is an error. Buffered
// lines indented to a closing block's content are emitted before its brace,
// the same partition popTo applies mid-file.
func (b *builder) finish() error {
	for len(b.frames) > 0 {
		f := b.pop()
		switch f.style.kind {
		case openerExplicit:
			return newError(ErrUnclosedBrace, b.file, f.headerLine, 1, "explicit brace is never closed")
		case openerSection:
			// closes silently
		default:
			var inside, after []pendingRaw
			for _, p := range b.pending {
				if p.indent >= f.indent {
					inside = append(inside, p)
				} else {
					after = append(after, p)
				}
			}
			b.pending = after
			b.emitPendingSlice(inside)
			b.emitCloser(f, b.eofLine)
		}
	}
	b.flushPending()
	return nil
}

func braceDelta(sig []Token) (closes, opens int) {
	d, min := 0, 0
	for _, t := range sig {
		switch t.Text {
		case "{":
			d++
		case "}":
			d--
			if d < min {
				min = d
			}
		}
	}
	return -min, d - min
}

func significantOf(tokens []Token) []Token {
	var sig []Token
	for _, t := range tokens {
		if t.significant() && t.Type != EOF {
			sig = append(sig, t)
		}
	}
	return sig
}

func sigIndices(tokens []Token) []int {
	var idx []int
	for i, t := range tokens {
		if t.significant() && t.Type != EOF {
			idx = append(idx, i)
		}
	}
	return idx
}

// wrapSpan parenthesizes a control header's condition: the significant
// tokens between the keyword and sig index stop (exclusive). The insertion
// is idempotent: a condition already wrapped by one balanced pair is left
// alone. Non-control lines pass through untouched.
func wrapSpan(tokens []Token, stop int) []Token {
	idx := sigIndices(tokens)
	sig := make([]Token, len(idx))
	for i, j := range idx {
		sig[i] = tokens[j]
	}
	if stop > len(sig) {
		stop = len(sig)
	}

	k := 0
	if k < len(sig) && sig[k].Text == "}" {
		k++
	}
	if k >= len(sig) || sig[k].Type != IDENT {
		return tokens
	}
	kwEnd := -1
	if conditionKeywords[sig[k].Text] {
		kwEnd = k + 1
	} else if sig[k].Text == "else" && k+1 < len(sig) && sig[k+1].Text == "if" {
		kwEnd = k + 2
	}
	if kwEnd < 0 || kwEnd >= stop {
		return tokens
	}

	cond := sig[kwEnd:stop]
	if cond[0].Text == "(" {
		depth := 0
		closeAt := -1
		for i, t := range cond {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			}
			if depth == 0 {
				closeAt = i
				break
			}
		}
		if closeAt == len(cond)-1 {
			return tokens // already fully wrapped
		}
	}

	openAt := idx[kwEnd]
	closeAfter := idx[stop-1]
	var result []Token
	result = append(result, tokens[:openAt]...)
	result = append(result, Token{Type: OPEN, Text: "("})
	result = append(result, tokens[openAt:closeAfter+1]...)
	result = append(result, Token{Type: CLOSE, Text: ")"})
	result = append(result, tokens[closeAfter+1:]...)
	return result
}

// appendSemi inserts ";" directly after the last significant token, so a
// trailing comment keeps its original spacing.
func appendSemi(tokens []Token) []Token {
	idx := sigIndices(tokens)
	if len(idx) == 0 {
		return tokens
	}
	at := idx[len(idx)-1] + 1
	var result []Token
	result = append(result, tokens[:at]...)
	result = append(result, Token{Type: PUNCT, Text: ";"})
	result = append(result, tokens[at:]...)
	return result
}

// replaceTrailingColonWithBrace swaps the block-opening colon for '{',
// keeping every other byte of the line intact.
func replaceTrailingColonWithBrace(tokens []Token) []Token {
	idx := sigIndices(tokens)
	for i := len(idx) - 1; i >= 0; i-- {
		t := tokens[idx[i]]
		if t.Type == COLON {
			result := make([]Token, len(tokens))
			copy(result, tokens)
			t.Type = OPEN
			t.Text = "{"
			result[idx[i]] = t
			return result
		}
		break
	}
	return tokens
}

// dropColonBeforeBrace removes a dialect colon that directly precedes an
// explicit '{' so the brace is not doubled.
func dropColonBeforeBrace(tokens []Token) []Token {
	idx := sigIndices(tokens)
	if len(idx) < 2 {
		return tokens
	}
	colonAt := idx[len(idx)-2]
	if tokens[colonAt].Type != COLON {
		return tokens
	}
	var result []Token
	result = append(result, tokens[:colonAt]...)
	result = append(result, tokens[colonAt+1:]...)
	return result
}
