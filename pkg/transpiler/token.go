package transpiler

import "fmt"

// TokenType identifies the lexical category of a token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Words and literals
	IDENT  // identifier or keyword
	NUMBER // numeric literal, including suffixes and exponents
	STRING // string literal "...", escapes kept verbatim
	CHAR   // character literal '...'
	RAWSTR // raw string literal R"delim( ... )delim", contents opaque

	// Opaque spans
	LINE_COMMENT  // // to end of physical line
	BLOCK_COMMENT // /* ... */, may span physical lines
	DIRECTIVE     // whole preprocessor line, including backslash continuations

	// Structure
	PUNCT // operator or punctuation, maximal munch ("::" is one PUNCT)
	COLON // a single ':'
	OPEN  // ( [ {
	CLOSE // ) ] }

	// Layout
	WS      // run of horizontal whitespace
	NEWLINE // \n or \r\n
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case IDENT:
		return "IDENT"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case CHAR:
		return "CHAR"
	case RAWSTR:
		return "RAWSTR"
	case LINE_COMMENT:
		return "LINE_COMMENT"
	case BLOCK_COMMENT:
		return "BLOCK_COMMENT"
	case DIRECTIVE:
		return "DIRECTIVE"
	case PUNCT:
		return "PUNCT"
	case COLON:
		return "COLON"
	case OPEN:
		return "OPEN"
	case CLOSE:
		return "CLOSE"
	case WS:
		return "WS"
	case NEWLINE:
		return "NEWLINE"
	}
	return "UNKNOWN"
}

// Token is one lexical unit. The scanner is lossless: concatenating the
// Text of every token in order reproduces the input byte for byte.
type Token struct {
	Type      TokenType
	Text      string
	StartLine int // 1-based
	StartCol  int // 1-based, counted in runes
	EndLine   int
	EndCol    int
	// Depth is the net ( / [ nesting after this token. It is the value
	// consumers care about on NEWLINE tokens; braces are not counted.
	Depth int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q L%d:%d", t.Type, t.Text, t.StartLine, t.StartCol)
}

// significant reports whether a token takes part in structural decisions.
// Whitespace, newlines and comments are layout; everything else is code.
func (t Token) significant() bool {
	switch t.Type {
	case WS, NEWLINE, LINE_COMMENT, BLOCK_COMMENT:
		return false
	}
	return true
}

// controlKeywords are the words that head a control structure. Lines led by
// one of these never receive a synthesized semicolon.
var controlKeywords = map[string]bool{
	"if":     true,
	"else":   true,
	"for":    true,
	"while":  true,
	"switch": true,
	"do":     true,
	"try":    true,
	"catch":  true,
}

// conditionKeywords are the control headers whose condition gets wrapped in
// parentheses when the author omitted them.
var conditionKeywords = map[string]bool{
	"if":     true,
	"for":    true,
	"while":  true,
	"switch": true,
}

// typeKeywords open a type-declaration frame. The value records whether the
// closing brace needs a trailing semicolon ("};").
var typeKeywords = map[string]bool{
	"class":     true,
	"struct":    true,
	"union":     true,
	"enum":      true,
	"namespace": false,
}

// accessSpecifiers open a section inside a class frame, not a nested block.
var accessSpecifiers = map[string]bool{
	"public":    true,
	"private":   true,
	"protected": true,
}

// continuationEnders: a logical line whose last significant token is one of
// these continues onto the next physical line. '{' is absent on purpose: it
// opens a block. "++" and "--" are postfix and end a statement.
var continuationEnders = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "=": true, "<": true, ">": true,
	",": true, "(": true, "[": true,
	"&&": true, "||": true, "==": true, "!=": true, "<=": true, ">=": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
	"<<": true, ">>": true,
	"->": true, ".": true, "::": true,
}

// continuationStarters: a physical line whose first significant token is one
// of these belongs to the previous logical line. '}' is absent: it closes a
// block rather than continuing an expression.
var continuationStarters = map[string]bool{
	".": true, ",": true, ")": true, "]": true, "?": true, ":": true,
}
