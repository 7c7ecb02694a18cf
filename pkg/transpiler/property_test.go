package transpiler

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// genBraceless produces a random well-indented program in the colon dialect.
func genBraceless(t *rapid.T) string {
	stmts := []string{"x = 1", "call(a, b)", "return x", "x += 2", "buf[i] = c"}
	headers := []string{"if x > 0", "while ok", "for (int i = 0; i < n; i++)", "void f()", "else"}

	var lines []string
	var emit func(indent, depth int)
	emit = func(indent, depth int) {
		n := rapid.IntRange(1, 3).Draw(t, "n")
		for i := 0; i < n; i++ {
			ws := strings.Repeat("    ", indent)
			if depth > 0 && rapid.Bool().Draw(t, "block") {
				lines = append(lines, ws+rapid.SampledFrom(headers).Draw(t, "header")+":")
				emit(indent+1, depth-1)
			} else {
				lines = append(lines, ws+rapid.SampledFrom(stmts).Draw(t, "stmt"))
			}
		}
	}
	emit(0, rapid.IntRange(0, 3).Draw(t, "depth"))
	return strings.Join(lines, "\n") + "\n"
}

func TestTranspilePropertiesOnGeneratedPrograms(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := genBraceless(t)
		res, err := Transpile("gen.blcpp", src, Config{})
		if err != nil {
			t.Fatalf("well-indented program rejected: %v\n%s", err, src)
		}

		// braces synthesized for every block are balanced
		if o, c := strings.Count(res.Output, "{"), strings.Count(res.Output, "}"); o != c {
			t.Fatalf("unbalanced braces (%d open, %d close):\n%s", o, c, res.Output)
		}

		// every output line is mapped, and into the input's line range
		outLines := strings.Split(strings.TrimSuffix(res.Output, "\n"), "\n")
		if res.Map.Len() != len(outLines) {
			t.Fatalf("map covers %d lines, output has %d", res.Map.Len(), len(outLines))
		}
		srcLines := strings.Count(src, "\n")
		for i := 1; i <= res.Map.Len(); i++ {
			if _, line := res.Map.Lookup(i); line < 1 || line > srcLines {
				t.Fatalf("output line %d maps to source line %d, input has %d lines", i, line, srcLines)
			}
		}

		// transpiled output is already standard C++: a second pass is identity
		again, err := Transpile("gen.blcpp", res.Output, Config{})
		if err != nil {
			t.Fatalf("output rejected on second pass: %v\n%s", err, res.Output)
		}
		if again.Output != res.Output {
			t.Fatalf("second pass changed output:\nfirst:\n%s\nsecond:\n%s", res.Output, again.Output)
		}
	})
}

// genExplicit produces a program already written in standard C++ form:
// braced blocks, parenthesized conditions, terminated statements.
func genExplicit(t *rapid.T) string {
	stmts := []string{"x = 1;", "call(a, b);", "return x;", "// note", ""}
	headers := []string{"if (x > 0)", "while (ok)", "for (int i = 0; i < n; i++)", "void f()"}

	var lines []string
	var emit func(indent, depth int)
	emit = func(indent, depth int) {
		n := rapid.IntRange(1, 3).Draw(t, "n")
		for i := 0; i < n; i++ {
			ws := strings.Repeat("    ", indent)
			if depth > 0 && rapid.Bool().Draw(t, "block") {
				lines = append(lines, ws+rapid.SampledFrom(headers).Draw(t, "header")+" {")
				emit(indent+1, depth-1)
				lines = append(lines, ws+"}")
			} else {
				lines = append(lines, ws+rapid.SampledFrom(stmts).Draw(t, "stmt"))
			}
		}
	}
	emit(0, rapid.IntRange(0, 3).Draw(t, "depth"))
	return strings.Join(lines, "\n") + "\n"
}

func TestTranspileLeavesStandardCppUntouched(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		src := genExplicit(t)
		res, err := Transpile("gen.cpp", src, Config{})
		if err != nil {
			t.Fatalf("standard C++ rejected: %v\n%s", err, src)
		}
		if res.Output != src {
			t.Fatalf("standard C++ was rewritten:\nin:\n%s\nout:\n%s", src, res.Output)
		}
	})
}
