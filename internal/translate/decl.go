package translate

import (
	"fmt"

	"modernc.org/cc/v4"

	"github.com/Rageoholic/zig/internal/zigast"
)

// ctx is the translation session: Context plus the pieces of state
// that recurse with the call stack rather than living on Context
// itself. Grounded on ccgo/v4/lib/decl.go's fnCtx/flowCtx split,
// keeping Context+Scope+result-used+l-r-value bundled together rather
// than ambient/global.
type ctx struct {
	*Context
	types *typeTranslator
}

func newCtx(c *Context) *ctx {
	return &ctx{Context: c, types: newTypeTranslator(c)}
}

// VisitDecl dispatches on the C declaration kind. Each branch
// first checks the decl-table so a decl already translated (via a
// cyclic forward-reference from types.go) is never redone.
func (c *ctx) VisitDecl(s *Scope, d *cc.Declarator) {
	defer c.recoverDiagnostic(s, d)

	switch {
	case d.Type() != nil:
		if _, ok := d.Type().(*cc.FunctionType); ok {
			c.visitFunction(s, d)
			return
		}
	}

	if d.IsTypedefName() {
		c.visitTypedef(s, d)
		return
	}

	c.visitVariable(s, d)
}

// recoverDiagnostic is the decl-boundary error handler: an Unsupported*
// failure anywhere under this call becomes a
// `pub const <name> = @compileError("...")` decl plus a preceding
// warning comment, and translation continues with the next decl.
// OutOfMemory is not caught here; it propagates.
func (c *ctx) recoverDiagnostic(s *Scope, d *cc.Declarator) {
	r := recover()
	if r == nil {
		return
	}
	te, ok := r.(*TranslateError)
	if !ok || te.Kind == KindOutOfMemory {
		panic(r)
	}
	name := c.pickDiagnosticName(d)
	s.appendRoot(c.Arena.Comment(fmt.Sprintf("warning: %s", te.Error())))
	s.appendRoot(c.Arena.VarDecl(name,
		nil,
		c.Arena.IntrinsicCall(zigast.IntrinsicCompileErr, c.Arena.Literal(fmt.Sprintf("%q", te.Error()))),
		true, true, false))
}

func (c *ctx) pickDiagnosticName(d *cc.Declarator) string {
	if n, ok := c.translated(d); ok {
		return n
	}
	name := d.Name()
	if name == "" {
		name = "anon"
	}
	return c.Root().makeMangledName(name)
}

// visitFunction translates a function declaration or definition.
func (c *ctx) visitFunction(s *Scope, d *cc.Declarator) {
	if _, ok := c.translated(d); ok {
		return
	}

	ft := stripAttributedParen(d.Type()).(*cc.FunctionType)
	hasBody := d.HasBody()
	if !hasBody {
		if def := d.DefinitionElsewhere(); def != nil {
			c.visitFunction(s, def)
			return
		}
	}

	pos := d.Position().String()
	name := c.mangleForDecl(s, d)
	c.markTranslated(d, name)

	retType, err := c.types.translateType(pos, ft.Result())
	if err != nil {
		panic(err)
	}

	var params []*zigast.Node
	fnScope := s
	if hasBody {
		fnScope = s.NewBlock("")
	}
	for _, p := range ft.Parameters() {
		pt, perr := c.types.translateType(pos, p.Type())
		if perr != nil {
			panic(perr)
		}
		pname := fnScope.makeMangledName(p.Name())
		params = append(params, c.Arena.Ident(pname), pt)

		// Non-const parameters get a shadow local so the parameter
		// itself stays immutable (Zig parameters are const; C allows
		// mutating them) — synthesise a shadow local arg_<name> instead.
		if hasBody && !cc.IsConst(p.Type()) {
			shadow := fnScope.makeMangledName("arg_" + p.Name())
			fnScope.aliases[p.Name()] = shadow
			fnScope.appendNode(c.Arena.VarDecl(shadow, pt, c.Arena.Ident(pname), false, false, false))
		}
	}

	variadic := ft.IsVariadic()
	if variadic && hasBody {
		// Variadic bodies aren't expressible; demote to an extern
		// declaration with a warning.
		s.appendRoot(c.Arena.Comment("warning: variadic function body dropped, emitted as extern"))
		s.appendRoot(c.Arena.FuncDecl(name, retType, paramTypesOnly(params), nil, true, true, false, false))
		return
	}

	if !hasBody {
		s.appendRoot(c.Arena.FuncDecl(name, retType, paramTypesOnly(params), nil, true, true, false, false))
		return
	}

	body, err := c.lowerCompoundStatement(fnScope, d.Body())
	if err != nil {
		panic(err)
	}
	// The shadow locals recorded on fnScope precede the body's own
	// statements.
	stmts := append(append([]*zigast.Node{}, fnScope.stmts...), body.Statements()...)

	noReturn := isNoReturn(ft.Result())
	if !fallsOffEndSafely(d.Body()) && !noReturn && ft.Result().Kind() != cc.Void {
		zero, zerr := c.zeroValue(pos, ft.Result())
		if zerr != nil {
			panic(zerr)
		}
		stmts = append(stmts, c.Arena.Unary("return ", zero, false))
	}
	body = c.Arena.Block("", stmts...)

	pub := d.Linkage() == cc.External
	s.appendRoot(c.Arena.FuncDecl(name, retType, params, body, pub, false, false, noReturn))
}

func paramTypesOnly(namesAndTypes []*zigast.Node) []*zigast.Node { return namesAndTypes }

func isNoReturn(t cc.Type) bool { return cc.HasAttribute(t, "noreturn") }

// fallsOffEndSafely is an approximation: it reports true when the
// body's final statement is a jump statement (return, goto, break or
// continue); loops are not inspected, so a final infinite loop reports
// false. A false negative here just costs a harmless extra `return
// <zero>;`.
func fallsOffEndSafely(body *cc.CompoundStatement) bool {
	last := body.LastStatement()
	if last == nil {
		return false
	}
	return last.Case == cc.StatementJump
}

// zeroValue builds a zero-initialized Target expression for t, used
// both by the fall-off-end synthesis above and by aggregate
// initializer padding.
func (c *ctx) zeroValue(pos string, t cc.Type) (*zigast.Node, error) {
	if cc.IsScalarType(t) {
		if cc.IsFloatingType(t) {
			return c.Arena.Literal("0.0"), nil
		}
		if t.Kind() == cc.Bool {
			return c.Arena.Literal("false"), nil
		}
		return c.Arena.Literal("0"), nil
	}
	texpr, err := c.types.translateType(pos, t)
	if err != nil {
		return nil, err
	}
	return c.Arena.Raw(fmt.Sprintf("std.mem.zeroes(%s)", renderTypeExprText(texpr))), nil
}

func stripAttributedParen(t cc.Type) cc.Type {
	for {
		switch x := t.(type) {
		case *cc.AttributedType:
			t = x.Base()
		case *cc.ParenType:
			t = x.Inner()
		default:
			return t
		}
	}
}

// mangleForDecl assigns a Target name for a top-level declarator: the
// C name if it doesn't collide, else a fresh mangling. Top-level
// bindings are recorded at Root regardless of which Scope is passed
// in, matching the Declaration Visitor always operating at file scope
// or one block-scope-static level down.
func (c *ctx) mangleForDecl(s *Scope, d *cc.Declarator) string {
	return c.Root().makeMangledName(d.Name())
}

// visitTypedef translates a typedef declaration.
func (c *ctx) visitTypedef(s *Scope, d *cc.Declarator) {
	if _, ok := c.translated(d); ok {
		return
	}
	pos := d.Position().String()
	if zig, ok := builtinTypedefFastPath[d.Name()]; ok {
		name := c.mangleForDecl(s, d)
		c.markTranslated(d, name)
		s.appendRoot(c.Arena.VarDecl(name, nil, c.Arena.TypeExpr(zig), true, true, false))
		return
	}
	under, err := c.types.translateType(pos, d.Type())
	if err != nil {
		panic(err)
	}
	name := c.mangleForDecl(s, d)
	c.markTranslated(d, name)
	s.appendRoot(c.Arena.VarDecl(name, nil, under, true, true, false))
}

// visitRecord translates a struct/union declaration, with or without
// a definition.
func (c *ctx) visitRecord(s *Scope, rt cc.Type, kind string) {
	if c.isTranslatedType(rt) {
		return
	}
	pos := ""
	if !cc.HasDefinition(rt) {
		c.markTranslatedType(rt, "")
		s.appendRoot(c.Arena.VarDecl(recordTagName(rt, kind), nil, c.Arena.RecordType("opaque"), true, true, false))
		return
	}
	node, err := c.types.translateRecord(pos, rt, kind)
	if err != nil {
		panic(err)
	}
	name := c.Root().makeMangledName(recordTagName(rt, kind))
	c.markTranslatedType(rt, name)
	if c.isDemoted(rt) {
		s.appendRoot(c.Arena.Comment(fmt.Sprintf("warning: %s demoted to opaque", name)))
	}
	s.appendRoot(c.Arena.VarDecl(name, nil, node, true, true, false))
}

func recordTagName(rt cc.Type, kind string) string {
	if n, ok := rt.(interface{ Tag() string }); ok && n.Tag() != "" {
		return kind + "_" + n.Tag()
	}
	return kind + "_anon"
}

// visitEnum translates an enum declaration: tag-only when every
// enumerator is implicit, otherwise individually-valued constants plus
// a top-level alias per enumerator (C enumerators are globally
// visible).
func (c *ctx) visitEnum(s *Scope, et *cc.EnumType) {
	if c.isTranslatedType(et) {
		return
	}
	pos := ""
	name := c.Root().makeMangledName("enum_" + et.Tag())
	c.markTranslatedType(et, name)

	if allImplicit(et) {
		node, err := c.types.translateEnum(pos, et)
		if err != nil {
			panic(err)
		}
		s.appendRoot(c.Arena.VarDecl(name, nil, node, true, true, false))
		for _, e := range et.Enumerators() {
			ename := c.Root().makeMangledName(e.Name())
			s.appendRoot(c.Arena.VarDecl(ename, nil,
				c.Arena.Binary(".", c.Arena.Ident(name), c.Arena.Ident(e.Name())), true, true, false))
		}
		return
	}

	tag := "c_int"
	if !isDefaultIntUnderlying(et.UnderlyingType()) {
		texpr, err := c.types.translateType(pos, et.UnderlyingType())
		if err != nil {
			panic(err)
		}
		tag = renderTypeExprText(texpr)
	}
	for _, e := range et.Enumerators() {
		ename := c.Root().makeMangledName(e.Name())
		s.appendRoot(c.Arena.VarDecl(ename, c.Arena.TypeExpr(tag), c.Arena.Literal(e.ValueText()), true, true, false))
		c.pendAlias(e.Name(), ename)
	}
}

func isDefaultIntUnderlying(t cc.Type) bool {
	return t.Kind() == cc.Int || t.Kind() == cc.UInt
}

// visitVariable translates a top-level variable declaration.
func (c *ctx) visitVariable(s *Scope, d *cc.Declarator) {
	if _, ok := c.translated(d); ok {
		return
	}
	pos := d.Position().String()
	name := c.mangleForDecl(s, d)
	c.markTranslated(d, name)

	extern := d.StorageClass() == cc.Extern && d.Initializer() == nil
	pub := !isMangledFromBlock(name, d.Name())

	t := d.Type()
	if at, ok := t.(*cc.ArrayType); ok && at.Len() < 0 && d.Initializer() != nil {
		t = c.inferArrayLengthFromInitializer(at, d.Initializer())
	}

	typeExpr, err := c.types.translateType(pos, t)
	if err != nil {
		panic(err)
	}

	var init *zigast.Node
	if d.Initializer() != nil {
		init, err = c.lowerInitializer(s, d.Initializer(), t)
		if err != nil {
			panic(err)
		}
		if t.Kind() != cc.Bool && isBoolExpr(d.Initializer()) {
			init = c.Arena.IntrinsicCall(zigast.IntrinsicBoolToInt, init)
		}
	}

	s.appendRoot(c.Arena.VarDecl(name, typeExpr, init, pub, !cc.IsMutable(t), extern))
}

func isMangledFromBlock(mangled, original string) bool { return mangled != original }

// inferArrayLengthFromInitializer derives the array length for an
// incomplete-array variable from its initializer:
// a string literal contributes len+1 (NUL), an init-list contributes
// its element count.
func (c *ctx) inferArrayLengthFromInitializer(at *cc.ArrayType, init *cc.Initializer) cc.Type {
	n := initializerElementCount(init)
	return at.WithLen(n)
}

func initializerElementCount(init *cc.Initializer) int64 {
	if s := init.StringLiteral(); s != "" {
		return int64(len(s)) + 1
	}
	return int64(init.ListLen())
}
