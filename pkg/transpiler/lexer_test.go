package transpiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanLossless(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Statement", "int x = 1\n"},
		{"NoFinalNewline", "int x = 1"},
		{"CRLF", "int x = 1\r\nint y = 2\r\n"},
		{"Indentation", "if x:\n\ty()\n"},
		{"LineComment", "x = 1 // trailing\n"},
		{"BlockComment", "x = /* one\n   two */ 1\n"},
		{"String", "s = \"a \\\"b\\\" c\"\n"},
		{"StringWithColon", "s = \"if x: {\"\n"},
		{"Char", "c = '\\n'\n"},
		{"RawString", "s = R\"(line one\nline two)\"\n"},
		{"RawStringDelim", "s = R\"xy(contains )\" inside)xy\"\n"},
		{"Directive", "#include <vector>\nint x\n"},
		{"DirectiveContinuation", "#define MAX(a, b) \\\n    ((a) > (b) ? (a) : (b))\nint x\n"},
		{"IndentedDirective", "    #pragma once\n"},
		{"Numbers", "x = 0xFF + 1'000 + 1e-5 + 0x1p+3 + .5f\n"},
		{"Operators", "a <<= b >>= c <=> d ->* e .* f ... g\n"},
		{"ScopeResolution", "std::vector<int> v\n"},
		{"Unicode", "wörd = \"héllo\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan("test.blcpp", tt.input, '#')
			require.NoError(t, err)
			var b strings.Builder
			for _, tok := range tokens {
				b.WriteString(tok.Text)
			}
			require.Equal(t, tt.input, b.String(), "concatenated token texts must reproduce the input")
			require.Equal(t, EOF, tokens[len(tokens)-1].Type)
		})
	}
}

func TestScanTokenKinds(t *testing.T) {
	tokens, err := Scan("t.blcpp", "x::y = R\"(raw)\" // done\n", '#')
	require.NoError(t, err)

	var kinds []TokenType
	for _, tok := range tokens {
		if tok.Type != WS {
			kinds = append(kinds, tok.Type)
		}
	}
	require.Equal(t, []TokenType{IDENT, PUNCT, IDENT, PUNCT, RAWSTR, LINE_COMMENT, NEWLINE, EOF}, kinds)
	require.Equal(t, "::", tokens[1].Text, "scope resolution must stay one token")
}

func TestScanDirectiveIsOneToken(t *testing.T) {
	src := "#define PAIR(a, b) \\\n    { a, b }\nint x\n"
	tokens, err := Scan("t.blcpp", src, '#')
	require.NoError(t, err)

	require.Equal(t, DIRECTIVE, tokens[0].Type)
	require.Equal(t, "#define PAIR(a, b) \\\n    { a, b }", tokens[0].Text)
	require.Equal(t, 1, tokens[0].StartLine)
	require.Equal(t, 2, tokens[0].EndLine)
}

func TestScanCustomMarker(t *testing.T) {
	tokens, err := Scan("t.blcpp", "@include <map>\n#tag = 1\n", '@')
	require.NoError(t, err)

	require.Equal(t, DIRECTIVE, tokens[0].Type)
	require.Equal(t, "@include <map>", tokens[0].Text)
	// '#' is not the marker here, so it lexes as plain punctuation
	require.Equal(t, PUNCT, tokens[2].Type)
	require.Equal(t, "#", tokens[2].Text)
}

func TestScanDepthOnNewline(t *testing.T) {
	src := "f(a,\n  b[0],\n  c)\nnext\n"
	tokens, err := Scan("t.blcpp", src, '#')
	require.NoError(t, err)

	var depths []int
	for _, tok := range tokens {
		if tok.Type == NEWLINE {
			depths = append(depths, tok.Depth)
		}
	}
	require.Equal(t, []int{1, 1, 0, 0}, depths)
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     ErrorKind
		wantLine int
		wantCol  int
	}{
		{"UnterminatedString", "x = \"abc\ny = 1\n", ErrUnterminatedLiteral, 1, 5},
		{"UnterminatedStringEOF", "x = \"abc", ErrUnterminatedLiteral, 1, 5},
		{"UnterminatedChar", "c = 'a\n", ErrUnterminatedLiteral, 1, 5},
		{"UnterminatedBlockComment", "a\n/* never closed\n", ErrUnterminatedLiteral, 2, 1},
		{"UnterminatedRawString", "s = R\"(open\n", ErrUnterminatedLiteral, 1, 5},
		{"StrayCloseParen", "x = a)\n", ErrMismatchedBracket, 1, 6},
		{"StrayCloseBracket", "x = a]\n", ErrMismatchedBracket, 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Scan("in.blcpp", tt.input, '#')
			require.Error(t, err)
			var terr *Error
			require.True(t, errors.As(err, &terr))
			require.Equal(t, tt.kind, terr.Kind)
			require.Equal(t, tt.wantLine, terr.Line)
			require.Equal(t, tt.wantCol, terr.Col)
			require.Equal(t, "in.blcpp", terr.File)
		})
	}
}

func TestScanEscapedQuoteDoesNotTerminate(t *testing.T) {
	tokens, err := Scan("t.blcpp", `s = "a\"b"`, '#')
	require.NoError(t, err)

	var str Token
	for _, tok := range tokens {
		if tok.Type == STRING {
			str = tok
		}
	}
	require.Equal(t, `"a\"b"`, str.Text)
}
