package translate

import (
	"sort"

	"modernc.org/cc/v4"
	"modernc.org/sortutil"

	"github.com/Rageoholic/zig/internal/zigast"
)

// declIdentity is the front-end's stable identity for a declaration,
// independent of redeclarations (the Glossary's "canonical
// declaration"). modernc.org/cc/v4 exposes this via Declarator's own
// canonicalization (redeclarations of the same entity share a single
// *cc.Declarator once the front-end has linked them), so the
// Declarator pointer itself is the identity key.
type declIdentity = *cc.Declarator

// typeIdentity plays the same role for records/enums, keyed by the
// type's own canonical pointer.
type typeIdentity = cc.Type

// Context is the process-wide translation state: created before
// visiting any declaration, destroyed after the final tree is emitted.
// It owns every piece of mutable bookkeeping; no translation function
// keeps state outside of one of these fields or a Scope reachable from
// Root.
//
// Grounded on ccgo/v4/lib/ccgo.go's Task struct, which plays the same
// "one mutable hub threaded explicitly through every call" role there.
type Context struct {
	Arena *zigast.Arena // output arena: owns every zigast.Node and interned string

	declTable map[declIdentity]string    // canonical C decl -> assigned Target name
	typeTable map[typeIdentity]string    // canonical record/enum identity -> assigned Target name
	opaque    map[typeIdentity]struct{}  // canonical record/enum identity -> demoted
	global    map[string]struct{}        // names reachable from any not-yet-translated decl or macro
	aliases   []pendingAlias             // pending `struct Foo` / `Foo` aliases, flushed by the Finalizer

	mangleCounter int
	root          *Scope

	opts Options
}

type pendingAlias struct {
	alias string
	name  string
}

// Options configures a translation run; populated from the CLI by
// cmd/translatec.
type Options struct {
	PackageName string
	Verbose     bool
}

// NewContext allocates a fresh Context with an empty Root scope. The
// caller must call Close when done so the arena is released.
func NewContext(opts Options) *Context {
	c := &Context{
		Arena:     zigast.NewArena(),
		declTable: map[declIdentity]string{},
		typeTable: map[typeIdentity]string{},
		opaque:    map[typeIdentity]struct{}{},
		global:    map[string]struct{}{},
		opts:      opts,
	}
	c.root = newRootScope(c)
	return c
}

// Close releases the output arena. Call exactly once, after the final
// tree has been rendered.
func (c *Context) Close() { c.Arena.Free() }

// Root returns the single Root scope. Invariant: exactly one Root
// exists and it has no parent.
func (c *Context) Root() *Scope { return c.root }

// translated reports whether d has already been assigned a Target
// name, and returns that name. A decl-table entry is write-once: once
// present, a decl is never retranslated.
func (c *Context) translated(d declIdentity) (string, bool) {
	n, ok := c.declTable[d]
	return n, ok
}

// markTranslated records the Target name chosen for d. Calling this
// twice for the same d is a programmer error (violates write-once);
// callers must check translated first.
func (c *Context) markTranslated(d declIdentity, name string) {
	c.declTable[d] = name
}

// isTranslatedType reports whether the record/enum identified by t has
// already been emitted.
func (c *Context) isTranslatedType(t typeIdentity) bool {
	_, ok := c.typeTable[t]
	return ok
}

// markTranslatedType records the Target name chosen for a record/enum.
// Called with an empty name for a forward/opaque-without-definition
// declaration, which still counts as "translated" — every record/enum
// is emitted exactly once, forward declaration or not.
func (c *Context) markTranslatedType(t typeIdentity, name string) {
	c.typeTable[t] = name
}

// demote records that t (a record or enum's canonical type) has been
// demoted to opaque because of a bit-field, flexible-array member, or
// an untranslatable member type.
func (c *Context) demote(t typeIdentity) { c.opaque[t] = struct{}{} }

// isDemoted reports whether t was already demoted. Pointer and
// typedef-chain translation call this (via wasDemotedToOpaque, which
// additionally unwraps typedef and attributed-type chains) to
// choose between a single-pointer and a C-pointer target shape.
func (c *Context) isDemoted(t typeIdentity) bool {
	_, ok := c.opaque[t]
	return ok
}

// reserveGlobal pre-populates the global-names set with a name a
// later pass will need. Called once, before visiting any declaration,
// by the driver's first pass over all decls and macros.
func (c *Context) reserveGlobal(name string) { c.global[name] = struct{}{} }

// pendAlias queues an alias/name pair for the Finalizer to flush later.
func (c *Context) pendAlias(alias, name string) {
	c.aliases = append(c.aliases, pendingAlias{alias, name})
}

// sortedGlobalNames returns the global-names set in a deterministic
// (sorted) order rather than Go's randomized map iteration order.
func (c *Context) sortedGlobalNames() []string {
	names := make([]string, 0, len(c.global))
	for n := range c.global {
		names = append(names, n)
	}
	sortutil.StringSlice(names).Sort()
	return names
}

// sortedDeclTable returns decl-table entries ordered by Target name,
// independent of Go's randomized map iteration.
func (c *Context) sortedDeclTable() []string {
	names := make([]string, 0, len(c.declTable))
	for _, n := range c.declTable {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
