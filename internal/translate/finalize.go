package translate

import (
	"modernc.org/sortutil"

	"github.com/Rageoholic/zig/internal/zigast"
)

// builtinsPreamble is the fixed `usingnamespace @import("builtins")`
// line every translated file opens with, bringing the fixed
// intrinsic-adjacent helpers into scope without each call site
// spelling out the import.
const builtinsPreamble = `usingnamespace @import("builtins");`

// Finalizer owns the very last step of a translation run, after every
// declaration and macro has been visited.
type Finalizer struct {
	ctx *ctx
}

func newFinalizer(c *ctx) *Finalizer { return &Finalizer{ctx: c} }

// Finalize flushes pending enum aliases, detects macro-to-function
// aliases, and returns the root node list in final emission order:
// the builtins preamble first, then every other root declaration in
// the order it was first appended.
func (f *Finalizer) Finalize() []*zigast.Node {
	c := f.ctx
	root := c.Root()

	f.flushPendingAliases()

	translatedNames := f.collectTranslatedNames()
	decls := c.detectFunctionAliasMacros(root.rootNodes(), translatedNames)

	out := make([]*zigast.Node, 0, len(decls)+1)
	out = append(out, c.Arena.Raw(builtinsPreamble))
	out = append(out, decls...)
	return out
}

// flushPendingAliases emits each enumerator's top-level alias to its
// tagged form. The Declaration Visitor only queues these (via
// Context.pendAlias) so a cyclic forward reference doesn't see a
// half-built alias list; they are appended here, sorted by alias name
// so the output never depends on map iteration order.
func (f *Finalizer) flushPendingAliases() {
	c := f.ctx.Context
	names := make([]string, len(c.aliases))
	byName := make(map[string]pendingAlias, len(c.aliases))
	for i, pa := range c.aliases {
		names[i] = pa.alias
		byName[pa.alias] = pa
	}
	sortutil.StringSlice(names).Sort()
	for _, n := range names {
		pa := byName[n]
		c.Root().appendRoot(c.Arena.VarDecl(pa.alias, nil, c.Arena.Ident(pa.name), true, true, false))
	}
}

// collectTranslatedNames gathers every decl-table target name, the
// lookup set detectFunctionAliasMacros needs to confirm a forwarding
// call's target was itself already translated (rather than, say,
// another not-yet-resolved macro).
func (f *Finalizer) collectTranslatedNames() map[string]struct{} {
	c := f.ctx.Context
	out := make(map[string]struct{}, len(c.declTable))
	for _, name := range c.declTable {
		out[name] = struct{}{}
	}
	for _, name := range c.typeTable {
		if name != "" {
			out[name] = struct{}{}
		}
	}
	return out
}
