package translate

import (
	"strings"
	"testing"
)

func parseMacroExprForTest(t *testing.T, body string) string {
	t.Helper()
	c := NewContext(Options{})
	t.Cleanup(c.Close)

	session := newCtx(c)
	p := newMacroParser(session, c.Root(), "TEST", body, nil)
	node, err := p.parseExpr()
	if err != nil {
		t.Fatalf("parseExpr(%q): %v", body, err)
	}
	return renderTypeExprText(node)
}

func TestMacroParseArithmeticPrecedence(t *testing.T) {
	got := parseMacroExprForTest(t, "1 + 2 * 3")
	want := "1 + 2 * 3"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMacroParseLogicalOpsUseZigSpelling(t *testing.T) {
	got := parseMacroExprForTest(t, "a && b || c")
	if !containsAll(got, "and", "or") {
		t.Fatalf("got %q, want and/or spellings", got)
	}
}

func TestMacroParseTernary(t *testing.T) {
	got := parseMacroExprForTest(t, "a ? b : c")
	if !containsAll(got, "if", "else") || !containsAll(got, "b", "c") {
		t.Fatalf("got %q, want a rendered conditional over b/c", got)
	}
}

func TestMacroParseGNUElvisOperatorEvaluatesOnce(t *testing.T) {
	got := parseMacroExprForTest(t, "f() ?: g()")
	if !containsAll(got, "blk", "f()", "g()") {
		t.Fatalf("got %q, want a labeled block binding f() once", got)
	}
}

func TestMacroParseCommaOperator(t *testing.T) {
	got := parseMacroExprForTest(t, "a, b, c")
	if !containsAll(got, "blk", "break :blk") {
		t.Fatalf("got %q, want a labeled block breaking with the last operand", got)
	}
}

func TestMacroParseUnaryDeref(t *testing.T) {
	got := parseMacroExprForTest(t, "*p")
	if !containsAll(got, ".*") {
		t.Fatalf("got %q, want a .* deref", got)
	}
}

func TestMacroParseMemberAndArrow(t *testing.T) {
	got := parseMacroExprForTest(t, "p->x")
	if !containsAll(got, ".*", ".x") {
		t.Fatalf("got %q, want pointer deref followed by field access", got)
	}
}

func TestMacroParseCastDisambiguation(t *testing.T) {
	got := parseMacroExprForTest(t, "(unsigned)x")
	if !containsAll(got, "c_uint") {
		t.Fatalf("got %q, want the cast target translated to c_uint", got)
	}
}

func TestMacroParseParenNotMistakenForCast(t *testing.T) {
	got := parseMacroExprForTest(t, "(a) * b")
	want := "a * b"
	if got != want {
		t.Fatalf("got %q, want %q (parenthesised expr, not a cast)", got, want)
	}
}

func TestMacroParseStringFusion(t *testing.T) {
	got := parseMacroExprForTest(t, `"a" "b"`)
	if !containsAll(got, "ab") {
		t.Fatalf("got %q, want fused string literal containing \"ab\"", got)
	}
}

func TestMacroParseHexLiteral(t *testing.T) {
	got := parseMacroExprForTest(t, "0x10u")
	if got != "16" {
		t.Fatalf("got %q, want \"16\"", got)
	}
}

func TestMacroParseFunctionCall(t *testing.T) {
	got := parseMacroExprForTest(t, "max(a, b)")
	want := "max(a, b)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMacroParseIndexing(t *testing.T) {
	got := parseMacroExprForTest(t, "arr[i]")
	want := "arr[i]"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMacroParseExpectReportsPosition(t *testing.T) {
	c := NewContext(Options{})
	defer c.Close()
	session := newCtx(c)
	p := newMacroParser(session, c.Root(), "BADMACRO", "(1", nil)
	if _, err := p.parseExpr(); err == nil {
		t.Fatalf("expected an error for an unterminated parenthesis")
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
