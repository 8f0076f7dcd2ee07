package zigast

import (
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

func assertContains(t *testing.T, got, want string) {
	t.Helper()
	if strings.Contains(got, want) {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want (substring)",
		ToFile:   "got",
		Context:  2,
	})
	t.Fatalf("output missing expected substring:\n%s", diff)
}

func TestRenderIdentityTypedef(t *testing.T) {
	a := NewArena()
	defer a.Free()

	decl := a.VarDecl("my_int", nil, a.TypeExpr("c_int"), true, true, false)
	got := Render([]*Node{decl})
	assertContains(t, got, "pub const my_int = c_int;")
}

func TestRenderOpaqueRecord(t *testing.T) {
	a := NewArena()
	defer a.Free()

	decl := a.VarDecl("struct_S", nil, a.RecordType("opaque"), true, true, false)
	got := Render([]*Node{decl})
	assertContains(t, got, "pub const struct_S = opaque {};")
}

func TestRenderPackedRecord(t *testing.T) {
	a := NewArena()
	defer a.Free()

	rt := a.PackedRecordType("struct", a.Field("a", a.TypeExpr("u8"), 0), a.Field("b", a.TypeExpr("u32"), 0))
	decl := a.VarDecl("struct_S", rt, nil, true, true, false)
	got := Render([]*Node{decl})
	assertContains(t, got, "packed struct {")
}

func TestRenderRem(t *testing.T) {
	a := NewArena()
	defer a.Free()

	call := a.IntrinsicCall(IntrinsicRem, a.Ident("a"), a.Ident("b"))
	var b strings.Builder
	b.WriteString("return ")
	renderExpr(&b, call)
	b.WriteString(";")
	assertContains(t, b.String(), "return @rem(a, b);")
}

func TestRenderFunctionLikeMacro(t *testing.T) {
	a := NewArena()
	defer a.Free()

	fn := a.FuncDecl("SQ", a.IntrinsicCall(IntrinsicTypeOf, a.Raw("(x)*(x)")),
		[]*Node{a.Ident("x"), a.TypeExpr("anytype")},
		a.Block("", a.Raw("return (x)*(x)")), true, false, true, false)
	got := Render([]*Node{fn})
	assertContains(t, got, "pub inline fn SQ(x: anytype) @TypeOf((x)*(x)) {")
	assertContains(t, got, "return (x)*(x);")
}
