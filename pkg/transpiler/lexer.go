package transpiler

import "unicode"

// rawPrefixes are the identifier spellings that open a raw string literal
// when immediately followed by a double quote.
var rawPrefixes = map[string]bool{
	"R": true, "LR": true, "uR": true, "UR": true, "u8R": true,
}

// operators holds every multi-rune operator, longest first within each
// leading rune so the scanner can take the maximal munch.
var operators = []string{
	"<<=", ">>=", "...", "->*", "<=>",
	"::", "->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ".*",
}

// Lexer holds all mutable state for a single lossless scanning pass.
type Lexer struct {
	src    []rune
	pos    int
	line   int // 1-based line of src[pos]
	col    int // 1-based column of src[pos], in runes
	depth  int // net ( / [ nesting
	atBOL  bool
	marker rune
	file   string
}

func newLexer(file, src string, marker rune) *Lexer {
	if marker == 0 {
		marker = '#'
	}
	return &Lexer{src: []rune(src), line: 1, col: 1, atBOL: true, marker: marker, file: file}
}

// Scan tokenises src losslessly. Every rune of the input lands in exactly
// one token, so concatenating token texts reproduces the input. The final
// EOF token is included. Scanning stops at the first unterminated literal
// or mismatched bracket.
func Scan(file, src string, marker rune) ([]Token, error) {
	l := newLexer(file, src, marker)
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

// advance consumes one rune, maintaining line and column counters.
func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// tok finalises a token whose text spans [start, l.pos).
func (l *Lexer) tok(t TokenType, start, startLine, startCol int) Token {
	endLine, endCol := l.line, l.col-1
	if endCol < 1 {
		// token ended exactly at a line break
		endLine--
		endCol = 1
	}
	return Token{
		Type:      t,
		Text:      string(l.src[start:l.pos]),
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   endLine,
		EndCol:    endCol,
		Depth:     l.depth,
	}
}

func (l *Lexer) next() (Token, error) {
	if l.pos >= len(l.src) {
		return Token{Type: EOF, StartLine: l.line, StartCol: l.col, EndLine: l.line, EndCol: l.col, Depth: l.depth}, nil
	}

	start, startLine, startCol := l.pos, l.line, l.col
	ch := l.peek()

	// Newlines first: they carry the bracket depth the builder reads.
	if ch == '\n' {
		l.advance()
		l.atBOL = true
		return l.tok(NEWLINE, start, startLine, startCol), nil
	}
	if ch == '\r' && l.peekAt(1) == '\n' {
		l.advance()
		l.advance()
		l.atBOL = true
		return l.tok(NEWLINE, start, startLine, startCol), nil
	}

	// Horizontal whitespace keeps beginning-of-line state alive so a
	// directive marker after indentation is still recognised.
	if ch == ' ' || ch == '\t' || ch == '\r' {
		for l.pos < len(l.src) {
			c := l.peek()
			if c != ' ' && c != '\t' && !(c == '\r' && l.peekAt(1) != '\n') {
				break
			}
			l.advance()
		}
		return l.tok(WS, start, startLine, startCol), nil
	}

	// Preprocessor directive: first non-whitespace rune on the line is the
	// marker. The whole line, including backslash continuations, is one
	// opaque token; the engine never synthesizes punctuation for it.
	if ch == l.marker && l.atBOL {
		l.atBOL = false
		return l.scanDirective(start, startLine, startCol), nil
	}
	l.atBOL = false

	if ch == '/' && l.peekAt(1) == '/' {
		for l.pos < len(l.src) && l.peek() != '\n' {
			l.advance()
		}
		return l.tok(LINE_COMMENT, start, startLine, startCol), nil
	}
	if ch == '/' && l.peekAt(1) == '*' {
		l.advance()
		l.advance()
		for l.pos < len(l.src) {
			if l.peek() == '*' && l.peekAt(1) == '/' {
				l.advance()
				l.advance()
				return l.tok(BLOCK_COMMENT, start, startLine, startCol), nil
			}
			l.advance()
		}
		return Token{}, newError(ErrUnterminatedLiteral, l.file, startLine, startCol, "unterminated block comment")
	}

	if ch == '"' {
		return l.scanString(start, startLine, startCol, '"', STRING)
	}
	if ch == '\'' {
		return l.scanString(start, startLine, startCol, '\'', CHAR)
	}

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanWord(start, startLine, startCol)
	}
	if unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peekAt(1))) {
		return l.scanNumber(start, startLine, startCol), nil
	}

	// Brackets adjust depth; braces deliberately do not.
	switch ch {
	case '(', '[':
		l.advance()
		l.depth++
		return l.tok(OPEN, start, startLine, startCol), nil
	case '{':
		l.advance()
		return l.tok(OPEN, start, startLine, startCol), nil
	case ')', ']':
		if l.depth == 0 {
			return Token{}, newError(ErrMismatchedBracket, l.file, startLine, startCol, "unmatched %q", string(ch))
		}
		l.advance()
		l.depth--
		return l.tok(CLOSE, start, startLine, startCol), nil
	case '}':
		l.advance()
		return l.tok(CLOSE, start, startLine, startCol), nil
	case ':':
		if l.peekAt(1) == ':' {
			l.advance()
			l.advance()
			return l.tok(PUNCT, start, startLine, startCol), nil
		}
		l.advance()
		return l.tok(COLON, start, startLine, startCol), nil
	}

	// Multi-rune operators, maximal munch.
	for _, op := range operators {
		if l.matches(op) {
			for range op {
				l.advance()
			}
			return l.tok(PUNCT, start, startLine, startCol), nil
		}
	}

	l.advance()
	return l.tok(PUNCT, start, startLine, startCol), nil
}

func (l *Lexer) matches(op string) bool {
	for i, r := range op {
		if l.peekAt(i) != r {
			return false
		}
	}
	return true
}

func (l *Lexer) scanWord(start, startLine, startCol int) (Token, error) {
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	word := string(l.src[start:l.pos])
	if rawPrefixes[word] && l.peek() == '"' {
		return l.scanRawString(start, startLine, startCol)
	}
	return l.tok(IDENT, start, startLine, startCol), nil
}

// scanNumber consumes a numeric literal opaquely: digits, hex/binary
// prefixes, digit separators, suffixes, and exponents with signs. The
// builder only needs the span, never the value.
func (l *Lexer) scanNumber(start, startLine, startCol int) Token {
	for l.pos < len(l.src) {
		r := l.peek()
		if unicode.IsDigit(r) || unicode.IsLetter(r) || r == '_' || r == '\'' || r == '.' {
			l.advance()
			continue
		}
		// exponent sign: 1e+5, 0x1p-3
		if (r == '+' || r == '-') && l.pos > start {
			e := l.src[l.pos-1]
			if e == 'e' || e == 'E' || e == 'p' || e == 'P' {
				l.advance()
				continue
			}
		}
		break
	}
	return l.tok(NUMBER, start, startLine, startCol)
}

// scanString scans a quoted literal. Backslash escapes never terminate it;
// a newline or end of input before the closing quote is an error, reported
// at the opening delimiter.
func (l *Lexer) scanString(start, startLine, startCol int, quote rune, t TokenType) (Token, error) {
	l.advance() // opening quote
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '\\' {
			l.advance()
			if l.pos < len(l.src) {
				l.advance()
			}
			continue
		}
		if r == '\n' {
			break
		}
		l.advance()
		if r == quote {
			return l.tok(t, start, startLine, startCol), nil
		}
	}
	name := "string"
	if t == CHAR {
		name = "character"
	}
	return Token{}, newError(ErrUnterminatedLiteral, l.file, startLine, startCol, "unterminated %s literal", name)
}

// scanRawString scans R"delim( ... )delim" verbatim. The payload is never
// tokenised and may span physical lines.
func (l *Lexer) scanRawString(start, startLine, startCol int) (Token, error) {
	l.advance() // opening quote
	var delim []rune
	for l.pos < len(l.src) && l.peek() != '(' {
		if l.peek() == '\n' {
			return Token{}, newError(ErrUnterminatedLiteral, l.file, startLine, startCol, "malformed raw string delimiter")
		}
		delim = append(delim, l.advance())
	}
	if l.pos >= len(l.src) {
		return Token{}, newError(ErrUnterminatedLiteral, l.file, startLine, startCol, "unterminated raw string literal")
	}
	l.advance() // '('
	closer := append([]rune{')'}, delim...)
	closer = append(closer, '"')
	for l.pos < len(l.src) {
		if l.peek() == ')' && l.hasSequence(closer) {
			for range closer {
				l.advance()
			}
			return l.tok(RAWSTR, start, startLine, startCol), nil
		}
		l.advance()
	}
	return Token{}, newError(ErrUnterminatedLiteral, l.file, startLine, startCol, "unterminated raw string literal")
}

func (l *Lexer) hasSequence(seq []rune) bool {
	for i, r := range seq {
		if l.peekAt(i) != r {
			return false
		}
	}
	return true
}

// scanDirective consumes the rest of a preprocessor line. A trailing
// backslash immediately before the newline continues the directive onto
// the next physical line; that newline is part of the directive token.
func (l *Lexer) scanDirective(start, startLine, startCol int) Token {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '\n' {
			break
		}
		if r == '\\' {
			// explicit continuation: swallow "\<newline>" and keep going
			if l.peekAt(1) == '\n' {
				l.advance()
				l.advance()
				continue
			}
			if l.peekAt(1) == '\r' && l.peekAt(2) == '\n' {
				l.advance()
				l.advance()
				l.advance()
				continue
			}
		}
		l.advance()
	}
	return l.tok(DIRECTIVE, start, startLine, startCol)
}
