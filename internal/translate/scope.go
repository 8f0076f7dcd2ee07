package translate

import (
	"fmt"

	"github.com/Rageoholic/zig/internal/zigast"
)

// scopeKind discriminates the Scope sum type, chosen over a
// base/downcast hierarchy so every walk uses pattern matching instead
// of type assertions (ccgo/v4/lib/decl.go's flowCtx instead chains
// *cc.X concrete scopers).
type scopeKind int

const (
	scopeRoot scopeKind = iota
	scopeBlock
	scopeSwitch
	scopeLoop
	scopeCondition
)

// primitiveTypeNames are always a mangling collision at any scope:
// Zig's builtin type identifiers.
var primitiveTypeNames = map[string]struct{}{
	"i8": {}, "u8": {}, "i16": {}, "u16": {}, "i32": {}, "u32": {},
	"i64": {}, "u64": {}, "i128": {}, "u128": {}, "isize": {}, "usize": {},
	"c_char": {}, "c_short": {}, "c_ushort": {}, "c_int": {}, "c_uint": {},
	"c_long": {}, "c_ulong": {}, "c_longlong": {}, "c_ulonglong": {},
	"c_longdouble": {}, "c_void": {}, "f16": {}, "f32": {}, "f64": {},
	"f80": {}, "f128": {}, "bool": {}, "void": {}, "type": {}, "anytype": {},
	"noreturn": {}, "anyerror": {}, "comptime_int": {}, "comptime_float": {},
}

// zigReservedWords can never be used as an emitted identifier either;
// they fold into the same contains() collision check as primitive
// type names.
var zigReservedWords = map[string]struct{}{
	"align": {}, "allowzero": {}, "and": {}, "anyframe": {}, "asm": {},
	"async": {}, "await": {}, "break": {}, "catch": {}, "comptime": {},
	"const": {}, "continue": {}, "defer": {}, "else": {}, "enum": {},
	"errdefer": {}, "error": {}, "export": {}, "extern": {}, "fn": {},
	"for": {}, "if": {}, "inline": {}, "noalias": {}, "opaque": {},
	"or": {}, "orelse": {}, "packed": {}, "pub": {}, "resume": {},
	"return": {}, "linksection": {}, "struct": {}, "suspend": {}, "switch": {},
	"test": {}, "threadlocal": {}, "try": {}, "union": {}, "unreachable": {},
	"usingnamespace": {}, "var": {}, "volatile": {}, "while": {},
}

// Scope is a parent-linked chain node. Exactly one scopeRoot exists
// (owned by Context); every other Scope is borrowed along the active
// recursion path.
type Scope struct {
	kind   scopeKind
	parent *Scope
	ctx    *Context

	// scopeRoot
	topNames map[string]struct{}
	topNodes []*zigast.Node

	// scopeBlock
	label         string
	stmts         []*zigast.Node
	aliases       map[string]string // c_name -> mangled name, this block only
	blockMangle   int

	// scopeSwitch
	cases        []*zigast.Node
	pending      *Scope // the accumulating block between case labels
	switchLabel  string
	defaultLabel string

	// scopeCondition
	lazyBlock *Scope // materialized only if a comma operator is hit
}

func newRootScope(c *Context) *Scope {
	return &Scope{kind: scopeRoot, ctx: c, topNames: map[string]struct{}{}}
}

// NewBlock pushes a fresh, optionally labeled Block scope.
func (s *Scope) NewBlock(label string) *Scope {
	return &Scope{kind: scopeBlock, parent: s, ctx: s.ctx, label: label, aliases: map[string]string{}}
}

// NewSwitch pushes a fresh Switch scope. switchLabel/defaultLabel are
// assigned lazily by the lowerer the first time a `break`/`default`
// inside it needs one.
func (s *Scope) NewSwitch() *Scope {
	sw := &Scope{kind: scopeSwitch, parent: s, ctx: s.ctx}
	sw.pending = sw.NewBlock("")
	return sw
}

// NewLoop pushes a bare Loop marker scope, used only as a
// break/continue target.
func (s *Scope) NewLoop() *Scope {
	return &Scope{kind: scopeLoop, parent: s, ctx: s.ctx}
}

// NewCondition pushes a Condition scope around the controlling
// expression of if/while/for/?:.
func (s *Scope) NewCondition() *Scope {
	return &Scope{kind: scopeCondition, parent: s, ctx: s.ctx}
}

// contains reports whether name is bound in any enclosing scope, is a
// Zig primitive type name or reserved word, or appears in the
// global-names set of yet-to-be-translated decls/macros.
func (s *Scope) contains(name string) bool {
	if _, ok := primitiveTypeNames[name]; ok {
		return true
	}
	if _, ok := zigReservedWords[name]; ok {
		return true
	}
	if _, ok := s.ctx.global[name]; ok {
		return true
	}
	for sc := s; sc != nil; sc = sc.parent {
		switch sc.kind {
		case scopeRoot:
			if _, ok := sc.topNames[name]; ok {
				return true
			}
		case scopeBlock:
			for _, mangled := range sc.aliases {
				if mangled == name {
					return true
				}
			}
		}
	}
	return false
}

// containsNow is like contains but never looks ahead into the
// global-names set: used while mangling so a numbered candidate only
// has to dodge names already bound in this scope chain, not every name
// some not-yet-translated decl or macro might also want.
func (s *Scope) containsNow(name string) bool {
	if _, ok := primitiveTypeNames[name]; ok {
		return true
	}
	if _, ok := zigReservedWords[name]; ok {
		return true
	}
	for sc := s; sc != nil; sc = sc.parent {
		switch sc.kind {
		case scopeRoot:
			if _, ok := sc.topNames[name]; ok {
				return true
			}
		case scopeBlock:
			for _, mangled := range sc.aliases {
				if mangled == name {
					return true
				}
			}
		}
	}
	return false
}

// getAlias walks to the innermost Block with an entry for name and
// returns its mangled form; at Root (or if no Block rebinds it)
// returns name unchanged.
func (s *Scope) getAlias(name string) string {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.kind == scopeBlock {
			if a, ok := sc.aliases[name]; ok {
				return a
			}
		}
	}
	return name
}

// makeMangledName assigns and records a collision-free Target name
// for desired. The initial check uses contains, since a name that a
// later not-yet-translated decl or macro will need must be avoided
// even before that decl is visited. Once mangling is underway,
// `desired_1`, `desired_2`, ... are instead tried against containsNow:
// a numbered candidate only needs to dodge names already bound in this
// scope chain, not every name some future decl might also want — that
// decl will get its own counter if it collides later, so checking the
// global set here would only make candidates skip numbers for no
// reason. The innermost Block's own mangle counter advances as
// candidates are tried, so two unrelated blocks that both shadow the
// same base name both mangle to `_1`, which is fine because they never
// share a scope.
func (s *Scope) makeMangledName(desired string) string {
	if !s.contains(desired) {
		s.record(desired, desired)
		return desired
	}

	blk := s.innermostBlock()
	for {
		var n int
		if blk != nil {
			blk.blockMangle++
			n = blk.blockMangle
		} else {
			s.ctx.mangleCounter++
			n = s.ctx.mangleCounter
		}
		candidate := fmt.Sprintf("%s_%d", desired, n)
		if !s.containsNow(candidate) {
			s.record(desired, candidate)
			return candidate
		}
	}
}

// record binds desired -> mangled in the innermost Block, or at Root
// if no Block encloses this scope.
func (s *Scope) record(desired, mangled string) {
	if blk := s.innermostBlock(); blk != nil {
		blk.aliases[desired] = mangled
		return
	}
	s.ctx.root.topNames[mangled] = struct{}{}
}

func (s *Scope) innermostBlock() *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.kind == scopeBlock {
			return sc
		}
	}
	return nil
}

// findBlockScope walks outward for the enclosing Block, materializing
// a Condition's lazy block if the search passes through one.
func (s *Scope) findBlockScope() *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		switch sc.kind {
		case scopeBlock:
			return sc
		case scopeCondition:
			if sc.lazyBlock == nil {
				sc.lazyBlock = sc.NewBlock("")
			}
			return sc.lazyBlock
		}
	}
	return nil
}

// appendNode appends node to the statement list of the innermost
// Block, or to the root node list if no Block is found. It only ever
// appends, never replaces or overwrites an existing entry.
func (s *Scope) appendNode(node *zigast.Node) {
	blk := s.findBlockScope()
	if blk == nil {
		s.ctx.root.topNodes = append(s.ctx.root.topNodes, node)
		return
	}
	blk.stmts = append(blk.stmts, node)
}

// getBreakableScope walks to the nearest Switch or Loop; reaching Root
// without finding one is a programmer error (a break/continue outside
// any breakable construct is rejected earlier, by the C front-end).
func (s *Scope) getBreakableScope() *Scope {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.kind == scopeSwitch || sc.kind == scopeLoop {
			return sc
		}
	}
	panic("translate: getBreakableScope reached Root")
}

// ensureSwitchLabel lazily assigns and returns this Switch scope's own
// label, synthesizing one on first use.
func (s *Scope) ensureSwitchLabel(mangle func(string) string) string {
	if s.kind != scopeSwitch {
		panic("translate: ensureSwitchLabel on non-Switch scope")
	}
	if s.switchLabel == "" {
		s.switchLabel = mangle("switch")
	}
	return s.switchLabel
}

// rootNodes returns the Root scope's accumulated top-level node list.
func (s *Scope) rootNodes() []*zigast.Node {
	r := s
	for r.kind != scopeRoot {
		r = r.parent
	}
	return r.topNodes
}

// appendRoot appends directly to the Root's node list, bypassing any
// enclosing Block — used by the Declaration Visitor when a record/enum
// translation recursively forces a nested emission.
func (s *Scope) appendRoot(node *zigast.Node) {
	r := s
	for r.kind != scopeRoot {
		r = r.parent
	}
	r.topNodes = append(r.topNodes, node)
}
