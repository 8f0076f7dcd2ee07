// Package translate implements the C-to-Target lowering pipeline: a
// Context-and-Scope-driven declaration visitor, type translator, cast
// engine, and statement/expression lowerer, plus a macro translator
// that reparses each macro body through its own small expression
// parser.
package translate

import (
	"modernc.org/cc/v4"

	"github.com/Rageoholic/zig/internal/zigast"
)

// Source is one input translation unit, mirroring cc.Source so callers
// don't need to import modernc.org/cc/v4 themselves just to build a
// Translate call.
type Source struct {
	Name  string
	Value string
}

// Result is a finished translation run: the rendered Target source
// plus the text of every top-level `warning:` comment in it (decls
// demoted to a `@compileError` diagnostic, macros that failed to
// translate, dropped variadic bodies).
type Result struct {
	Source   string
	Warnings []string
}

// Translate is the top-level entry point: parse with the C front-end,
// then visit every top-level declaration in front-end order, then
// every macro, then run the Finalizer, then render.
//
// Grounded on ccgo/v4/lib/ccgo.go's Main/compile flow (parse once with
// cc.Parse, then a single pass over cc.AST.TranslationUnit), reduced
// to the single-context, single-output-file shape this translator's
// scope covers.
func Translate(opts Options, sources []Source) (Result, error) {
	ccSources := make([]cc.Source, len(sources))
	for i, s := range sources {
		ccSources[i] = cc.Source{Name: s.Name, Value: s.Value}
	}

	ast, err := cc.Parse(&cc.Config{}, ccSources)
	if err != nil {
		return Result{}, errorf(KindUnsupportedTranslation, "parse: %v", err)
	}

	c := NewContext(opts)
	defer c.Close()

	session := newCtx(c)
	var warnings []string

	reserveGlobalNames(c, ast)

	for _, d := range externalDeclarations(ast) {
		session.VisitDecl(c.Root(), d)
	}

	for _, m := range macroDefinitions(ast) {
		translateMacro(session, c.Root(), m)
	}

	collectWarnings(c.Root().rootNodes(), &warnings)

	roots := newFinalizer(session).Finalize()
	return Result{Source: zigast.Render(roots), Warnings: warnings}, nil
}

// reserveGlobalNames reserves every name any declaration or macro will
// eventually need before any individual translation begins, so an
// early decl's mangling never collides with a later decl's natural
// name.
func reserveGlobalNames(c *Context, ast *cc.AST) {
	for _, d := range externalDeclarations(ast) {
		if d.Name() != "" {
			c.reserveGlobal(d.Name())
		}
	}
	for _, m := range macroDefinitions(ast) {
		c.reserveGlobal(m.Name())
	}
}

// externalDeclarations flattens the front-end's translation unit into
// the ordered slice of top-level declarators the Declaration Visitor
// walks.
func externalDeclarations(ast *cc.AST) []*cc.Declarator {
	return ast.TranslationUnit.Declarators()
}

// macroDefinitions returns every object-like and function-like macro
// the front-end captured, in source order.
func macroDefinitions(ast *cc.AST) []*cc.Macro {
	return ast.Macros()
}

// translateMacro lexes, parses, and appends the resulting declaration
// for a single macro, recovering an Unsupported* failure into a
// warning comment the same way a declaration's own recoverDiagnostic
// does; collectWarnings below picks these up from the rendered root
// list along with every decl-originated one.
func translateMacro(c *ctx, s *Scope, m *cc.Macro) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		te, ok := r.(*TranslateError)
		if !ok || te.Kind == KindOutOfMemory {
			panic(r)
		}
		s.appendRoot(c.Arena.Comment("warning: " + te.Error()))
	}()

	node, err := c.translateMacroBody(s, m.Name(), m.ParamList(), m.Body())
	if err != nil {
		panic(err)
	}
	s.appendRoot(node)
}

// collectWarnings scans the finished root list for every warning
// Comment node, whichever visitor emitted it, so Result.Warnings mirrors
// exactly what ended up in the rendered output.
func collectWarnings(roots []*zigast.Node, warnings *[]string) {
	for _, n := range roots {
		if text, ok := n.AsWarningComment(); ok {
			*warnings = append(*warnings, text)
		}
	}
}
