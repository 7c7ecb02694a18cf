package headers

import (
	"regexp"
	"strings"

	"blcc/pkg/transpiler"
)

// GuardKind records how a header protects itself against double inclusion.
// The resolver only reports it; headers without a guard are passed through
// unchanged, same as any other.
type GuardKind int

const (
	GuardNone GuardKind = iota
	GuardPragmaOnce
	GuardIfndef
)

func (g GuardKind) String() string {
	switch g {
	case GuardPragmaOnce:
		return "pragma-once"
	case GuardIfndef:
		return "ifndef"
	}
	return "none"
}

// Node is one file in the include graph. A node is created once per
// absolute path, so a header reached over several include routes is
// transpiled exactly once and every parent links the same artifact.
type Node struct {
	Path     string // absolute source path
	Dialect  bool   // carries a dialect extension and gets transpiled
	Guard    GuardKind
	Artifact string // absolute output path, empty for non-dialect nodes
	Map      *transpiler.LineMap
	Children []*Node
	Err      error

	includes []includeRef
}

// includeRef is one include directive found in a file, before resolution.
type includeRef struct {
	name   string
	angled bool
	line   int // 1-based line of the directive

	resolved *Node // set during discovery when the target is a dialect file
}

var (
	pragmaOncePat = regexp.MustCompile(`^\s*#\s*pragma\s+once\b`)
	ifndefPat     = regexp.MustCompile(`^\s*#\s*ifndef\s+(\w+)`)
	definePat     = regexp.MustCompile(`^\s*#\s*define\s+(\w+)`)
)

// DetectGuard classifies the include guard of a header: "#pragma once",
// the classic #ifndef/#define pair, or nothing. Only the first two
// non-blank, non-comment lines are considered, which is where every real
// guard lives.
func DetectGuard(src string) GuardKind {
	var lead []string
	for _, line := range strings.Split(src, "\n") {
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "//") {
			continue
		}
		lead = append(lead, line)
		if len(lead) == 2 {
			break
		}
	}
	if len(lead) == 0 {
		return GuardNone
	}
	if pragmaOncePat.MatchString(lead[0]) {
		return GuardPragmaOnce
	}
	if len(lead) == 2 {
		m := ifndefPat.FindStringSubmatch(lead[0])
		d := definePat.FindStringSubmatch(lead[1])
		if m != nil && d != nil && m[1] == d[1] {
			return GuardIfndef
		}
	}
	return GuardNone
}
