package transpiler

// ColonRole is the closed set of grammatical roles a colon can take at the
// end of a logical line. Roles are decided by a fixed priority table over
// the line's significant tokens, never guessed per instance.
type ColonRole int

const (
	// ColonNone: the line does not end in a colon at depth zero. Any colon
	// earlier in the line (ternary branch, bit-field width, range-for,
	// constructor initializer list) is inert: a colon followed by further
	// tokens on the same line never opens a block.
	ColonNone ColonRole = iota
	// ColonBlockOpen: the trailing colon opens an indentation block.
	ColonBlockOpen
	// ColonCaseLabel: case/default label; the colon is kept verbatim and
	// the body is fall-through statements at the same or deeper indent.
	ColonCaseLabel
	// ColonAccessSpec: public:/private:/protected:; opens a section inside
	// the enclosing class frame, not a nested block.
	ColonAccessSpec
)

// ClassifyColon determines the role of a logical line's trailing colon.
// Scope resolution "::" is a single PUNCT token and can never reach here,
// so two adjacent colons are never split.
func ClassifyColon(ll *LogicalLine) ColonRole {
	sig := ll.Significant()
	if len(sig) == 0 || sig[len(sig)-1].Type != COLON {
		return ColonNone
	}
	first := sig[0]
	if first.Type == IDENT {
		switch first.Text {
		case "case", "default":
			return ColonCaseLabel
		}
		if len(sig) == 2 && accessSpecifiers[first.Text] {
			return ColonAccessSpec
		}
	}
	return ColonBlockOpen
}

// openerKind tags what sort of block a header opens; it decides closing
// punctuation and statement handling inside the frame.
type openerKind int

const (
	openerPlain    openerKind = iota
	openerControl             // if/for/while/switch/else/try/catch
	openerDo                  // do-while body; the while clause trails the brace
	openerType                // class/struct/union/enum/namespace
	openerLambda              // lambda body used as an expression
	openerFunc                // function body
	openerExplicit            // literal '{', indentation not significant
	openerSection             // case/default or access-specifier section, closes silently
)

// frameStyle captures everything a block opener implies.
type frameStyle struct {
	kind         openerKind
	closeSemi    bool // emit "};" instead of "}"
	noSemiInside bool // enum bodies: entries take no synthesized semicolons
}

// classifyOpener inspects a colon-terminated header and decides the kind of
// frame it opens. "enum" is checked before "class" so that "enum class"
// resolves to an enum frame.
func classifyOpener(ll *LogicalLine) frameStyle {
	sig := ll.Significant()
	if len(sig) == 0 {
		return frameStyle{kind: openerPlain}
	}
	if sig[0].Type == IDENT && sig[0].Text == "do" {
		return frameStyle{kind: openerDo}
	}

	words := map[string]bool{}
	for _, t := range sig {
		if t.Type == IDENT {
			words[t.Text] = true
		}
	}
	switch {
	case words["enum"]:
		return frameStyle{kind: openerType, closeSemi: true, noSemiInside: true}
	case words["class"], words["struct"], words["union"]:
		return frameStyle{kind: openerType, closeSemi: true}
	case words["namespace"]:
		return frameStyle{kind: openerType}
	case words["switch"], words["if"], words["for"], words["while"],
		words["else"], words["try"], words["catch"]:
		return frameStyle{kind: openerControl}
	}
	if hasLambdaPattern(sig) {
		return frameStyle{kind: openerLambda, closeSemi: true}
	}
	for _, t := range sig {
		if t.Text == "(" {
			return frameStyle{kind: openerFunc}
		}
	}
	return frameStyle{kind: openerPlain}
}

// hasLambdaPattern detects a lambda introducer: a '[' that does not follow
// a value (which would make it a subscript), closed and followed by '(' or
// simple enough to be a bare capture like [], [&], [=].
func hasLambdaPattern(sig []Token) bool {
	for i := 0; i < len(sig); i++ {
		if sig[i].Text != "[" {
			continue
		}
		if i > 0 {
			prev := sig[i-1]
			if prev.Type == IDENT || prev.Type == NUMBER || prev.Text == "]" || prev.Text == ")" {
				continue // subscript
			}
		}
		depth := 1
		j := i + 1
		for j < len(sig) && depth > 0 {
			switch sig[j].Text {
			case "[":
				depth++
			case "]":
				depth--
			}
			j++
		}
		if depth != 0 {
			return false
		}
		if j < len(sig) && sig[j].Text == "(" {
			return true
		}
		if j-i-2 <= 1 { // [], [&], [=], [x]
			return true
		}
	}
	return false
}
