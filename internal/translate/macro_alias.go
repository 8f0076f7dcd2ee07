package translate

import (
	"fmt"
	"strings"

	"github.com/Rageoholic/zig/internal/zigast"
)

// detectFunctionAliasMacros implements the post-pass that detects
// after all macros are translated: a macro whose entire body is a
// single, bare call forwarding every parameter unchanged to another
// already-translated function (the common `#define FOO(x) bar(x)`
// pass-through idiom) is re-emitted as a plain
// alias declaration instead of its own inline function, so callers see
// `pub const FOO = bar;` rather than a redundant wrapper.
func (c *Context) detectFunctionAliasMacros(decls []*zigast.Node, translatedNames map[string]struct{}) []*zigast.Node {
	out := make([]*zigast.Node, 0, len(decls))
	for _, d := range decls {
		if alias, ok := c.asFunctionAlias(d, translatedNames); ok {
			out = append(out, alias)
			continue
		}
		out = append(out, d)
	}
	return out
}

// asFunctionAlias recognises a FuncDecl whose body is exactly
// `return target(a, b, ...);` where target's argument list is the
// function's own parameter list verbatim, and rebuilds it as a VarDecl
// alias. It matches on that shape alone, so any such FuncDecl in decls
// is rewritten, not only one emitted for a macro. Matching is done on the rendered body text rather
// than by walking the body's node tree, since a forwarding call is the
// single case worth detecting and the textual shape is unambiguous.
func (c *Context) asFunctionAlias(d *zigast.Node, translatedNames map[string]struct{}) (*zigast.Node, bool) {
	name, ok := d.IsFuncDecl()
	if !ok {
		return nil, false
	}
	body := d.FuncDeclBody()
	if body == nil {
		return nil, false
	}
	params := d.FuncDeclParamNames()
	wantArgs := strings.Join(params, ", ")

	rendered := strings.TrimSpace(zigast.Render([]*zigast.Node{body}))
	lines := strings.Split(strings.Trim(rendered, "{}\n"), "\n")
	if len(lines) != 1 {
		return nil, false
	}
	stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(lines[0]), ";"))

	for target := range translatedNames {
		want := fmt.Sprintf("return %s(%s)", target, wantArgs)
		if stmt == want {
			return c.Arena.VarDecl(name, nil, c.Arena.Ident(target), true, true, false), true
		}
	}
	return nil, false
}
