package wrapper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DiagStyle is the diagnostic format family of the underlying compiler.
type DiagStyle int

const (
	DiagGNU  DiagStyle = iota // file:line:col: message
	DiagMSVC                  // file(line): message
)

func (s DiagStyle) String() string {
	if s == DiagMSVC {
		return "msvc"
	}
	return "gnu"
}

var (
	gnuDiagPat  = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?:`)
	msvcDiagPat = regexp.MustCompile(`^(.+?)\((\d+)(,\s*\d+)?\)(\s*):`)
)

// PatchDiagnostics rewrites compiler output so every position that falls
// inside a transpiled artifact points at the original source instead.
// lookup receives the file and line the compiler printed; files the lookup
// does not know pass through unchanged, so diagnostics in system headers
// keep their real positions.
func PatchDiagnostics(output string, style DiagStyle, lookup func(file string, line int) (string, int)) string {
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		switch style {
		case DiagGNU:
			m := gnuDiagPat.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			ln, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			file, newLn := lookup(m[1], ln)
			col := ""
			if m[3] != "" {
				col = ":" + m[3]
			}
			lines[i] = fmt.Sprintf("%s:%d%s:%s", file, newLn, col, line[len(m[0]):])
		case DiagMSVC:
			m := msvcDiagPat.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			ln, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			file, newLn := lookup(m[1], ln)
			lines[i] = fmt.Sprintf("%s(%d%s)%s:%s", file, newLn, m[3], m[4], line[len(m[0]):])
		}
	}
	return strings.Join(lines, "\n")
}
