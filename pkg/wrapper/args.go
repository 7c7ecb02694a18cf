package wrapper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandResponseFiles replaces every "@file" argument with the
// whitespace-separated tokens the file contains. Compilers on Windows hit
// command-line length limits and build systems fall back to response
// files, so the wrapper has to see through them to find source arguments.
// Expansion is recursive; a missing file is an error.
func ExpandResponseFiles(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "@") || len(arg) == 1 {
			out = append(out, arg)
			continue
		}
		content, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("response file %s: %w", arg[1:], err)
		}
		inner, err := ExpandResponseFiles(splitResponseTokens(string(content)))
		if err != nil {
			return nil, err
		}
		out = append(out, inner...)
	}
	return out, nil
}

// splitResponseTokens splits response file content on whitespace, honoring
// double quotes around paths with spaces.
func splitResponseTokens(content string) []string {
	var tokens []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range content {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// ExtractIncludeDirs pulls include search directories out of a compiler
// argument list: -I for the GNU family, both -I and /I for MSVC. Attached
// ("-Idir") and detached ("-I dir") forms are handled.
func ExtractIncludeDirs(args []string, style DiagStyle) []string {
	flags := []string{"-I"}
	if style == DiagMSVC {
		flags = append(flags, "/I")
	}
	var dirs []string
	for i := 0; i < len(args); i++ {
		for _, f := range flags {
			if args[i] == f {
				if i+1 < len(args) {
					i++
					dirs = append(dirs, args[i])
				}
				break
			}
			if strings.HasPrefix(args[i], f) && len(args[i]) > len(f) {
				dirs = append(dirs, args[i][len(f):])
				break
			}
		}
	}
	return dirs
}

// isFlag reports whether an argument is an option rather than a file.
// MSVC options start with '/' as well, but only when the argument is not
// an existing path, since '/' also begins absolute paths on Unix.
func isFlag(arg string, style DiagStyle) bool {
	if strings.HasPrefix(arg, "-") {
		return true
	}
	if style == DiagMSVC && strings.HasPrefix(arg, "/") {
		if _, err := os.Stat(arg); err != nil {
			return true
		}
	}
	return false
}

// dialectSources returns the positions of arguments that name dialect
// files needing transpilation.
func dialectSources(args []string, style DiagStyle, exts []string) []int {
	var idx []int
	for i, arg := range args {
		if isFlag(arg, style) {
			continue
		}
		ext := filepath.Ext(arg)
		for _, e := range exts {
			if ext == e {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}
