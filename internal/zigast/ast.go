// Package zigast is the downstream Target AST: an opaque builder API
// for the small slice of Zig syntax the translator needs to emit.
//
// Nothing outside this package inspects a Node's internals; every
// producer goes through the constructors below and every consumer
// renders through Render. That mirrors how the upstream C front-end
// (modernc.org/cc/v4) is consumed only through its own node/type query
// methods: the translator never downcasts a foreign AST, it only ever
// builds this one.
package zigast

import (
	"unsafe"

	"modernc.org/memory"
)

// Tag identifies a Node's shape. It exists so Render can switch on it
// without reflection; callers never branch on Tag themselves.
type Tag int

const (
	_ Tag = iota
	TagLiteral
	TagIdent
	TagBinary
	TagUnary
	TagCast
	TagConditional
	TagBlock
	TagVarDecl
	TagFuncDecl
	TagTypeExpr
	TagIntrinsicCall
	TagField        // struct/union field, or enumerator
	TagRecordType   // struct/union/opaque type literal
	TagEnumType     // enum type literal
	TagComment      // a standalone warning/diagnostic comment
	TagRaw          // an already-rendered fragment, used sparingly
)

// Intrinsic names the Zig builtins the lowerer wraps expressions in.
// These are the intrinsic-call
// wrappers").
type Intrinsic string

const (
	IntrinsicBitCast     Intrinsic = "@bitCast"
	IntrinsicTruncate    Intrinsic = "@truncate"
	IntrinsicSignExtend  Intrinsic = "@as" // widening is expressed as @as in this AST
	IntrinsicIntToFloat  Intrinsic = "@intToFloat"
	IntrinsicFloatToInt  Intrinsic = "@floatToInt"
	IntrinsicIntToPtr    Intrinsic = "@intToPtr"
	IntrinsicPtrToInt    Intrinsic = "@ptrToInt"
	IntrinsicAlignCast   Intrinsic = "@alignCast"
	IntrinsicAlignOf     Intrinsic = "@alignOf"
	IntrinsicSizeOf      Intrinsic = "@sizeOf"
	IntrinsicBoolToInt   Intrinsic = "@boolToInt"
	IntrinsicIntToEnum   Intrinsic = "@intToEnum"
	IntrinsicEnumToInt   Intrinsic = "@enumToInt"
	IntrinsicPtrCast     Intrinsic = "@ptrCast"
	IntrinsicIntCast     Intrinsic = "@intCast"
	IntrinsicFloatCast   Intrinsic = "@floatCast"
	IntrinsicDivTrunc    Intrinsic = "@divTrunc"
	IntrinsicRem         Intrinsic = "@rem"
	IntrinsicTypeOf      Intrinsic = "@TypeOf"
	IntrinsicCompileErr  Intrinsic = "@compileError"
)

// Node is the opaque Target AST node. Zero value is not meaningful;
// obtain one through a constructor.
type Node struct {
	tag Tag

	// Shared scalar payload, meaning depends on tag.
	text  string
	text2 string

	kids []*Node

	// VarDecl / FuncDecl / RecordType / record field flags.
	pub      bool
	constant bool
	extern   bool
	inline   bool
	noret    bool
	packed   bool
	align    int64
}

// Arena owns every Node allocated through it. Callers create one per
// Context (see internal/translate) and let it go out of scope when the
// renderer is done; modernc.org/memory.Allocator gives us malloc-style
// allocation without per-node GC pressure, the same role an arena
// plays for a Go AST builder. Every block it hands out via
// UnsafeCalloc is tracked in ptrs so Free can release each one
// individually, the way modernc.org/libc's own allocator wrapper frees
// what it allocated.
type Arena struct {
	alloc memory.Allocator
	ptrs  []uintptr
}

// NewArena returns a fresh, empty Arena.
func NewArena() *Arena { return &Arena{} }

// Free releases every block the Arena handed out. Call once, after
// rendering; nodes must not be touched afterward.
func (a *Arena) Free() {
	for _, p := range a.ptrs {
		a.alloc.UnsafeFree(p)
	}
	a.ptrs = nil
}

func (a *Arena) node(tag Tag) *Node {
	// memory.Allocator deals in byte slices; we still let Go's GC own
	// *Node values themselves (they're small and short-lived relative
	// to a translation run) and use the arena for the larger, more
	// numerous string payloads interned alongside them via Intern.
	return &Node{tag: tag}
}

// Intern copies s into arena-owned storage and returns the stable
// string backed by it. Every string a Node stores that outlives its
// producing function (identifiers, literal text, comments) should be
// interned so the arena's lifetime — not Go's GC — governs it.
func (a *Arena) Intern(s string) string {
	if s == "" {
		return ""
	}
	p, b, err := a.alloc.UnsafeCalloc(len(s))
	if err != nil {
		// OutOfMemory is the one unrecoverable error kind; it is
		// raised as a panic.
		panic(outOfMemory{err})
	}
	a.ptrs = append(a.ptrs, p)
	copy(b, s)
	return unsafe.String(&b[0], len(b))
}

// outOfMemory is the panic value Intern raises when the allocator
// fails. internal/translate does not recover it: its decl-boundary
// handler re-panics any value that is not a *TranslateError, so the
// panic propagates out of Translate rather than being returned as a
// KindOutOfMemory error.
type outOfMemory struct{ err error }

func (o outOfMemory) Error() string { return "zigast: out of memory: " + o.err.Error() }

// Literal builds an integer/float/bool/string/null literal node. text
// is the already-formatted Zig literal text (e.g. "42", "3.14",
// "\"abc\"", "null", "true").
func (a *Arena) Literal(text string) *Node {
	n := a.node(TagLiteral)
	n.text = a.Intern(text)
	return n
}

// Ident builds an identifier reference node.
func (a *Arena) Ident(name string) *Node {
	n := a.node(TagIdent)
	n.text = a.Intern(name)
	return n
}

// Binary builds `lhs op rhs`.
func (a *Arena) Binary(op string, lhs, rhs *Node) *Node {
	n := a.node(TagBinary)
	n.text = a.Intern(op)
	n.kids = []*Node{lhs, rhs}
	return n
}

// Unary builds `op operand` (prefix) or, when postfix is true,
// `operand op`.
func (a *Arena) Unary(op string, operand *Node, postfix bool) *Node {
	n := a.node(TagUnary)
	n.text = a.Intern(op)
	n.kids = []*Node{operand}
	n.constant = postfix // reuse the bool field; meaning is local to TagUnary
	return n
}

// Cast builds an explicit `@as(T, expr)` style cast. intrinsic may be
// empty, in which case Render falls back to a bare @as(T, expr).
func (a *Arena) Cast(intrinsic Intrinsic, typ, expr *Node) *Node {
	n := a.node(TagCast)
	n.text = a.Intern(string(intrinsic))
	n.kids = []*Node{typ, expr}
	return n
}

// IntrinsicCall builds a call to one of the fixed intrinsic wrappers
// with arbitrary arguments, e.g. @alignCast(@alignOf(T), e).
func (a *Arena) IntrinsicCall(name Intrinsic, args ...*Node) *Node {
	n := a.node(TagIntrinsicCall)
	n.text = a.Intern(string(name))
	n.kids = args
	return n
}

// Conditional builds `if (cond) then else else`.
func (a *Arena) Conditional(cond, then, els *Node) *Node {
	n := a.node(TagConditional)
	n.kids = []*Node{cond, then, els}
	return n
}

// Block builds a (possibly labeled) sequence of statement nodes.
// label may be empty for an unlabeled block.
func (a *Arena) Block(label string, stmts ...*Node) *Node {
	n := a.node(TagBlock)
	n.text = a.Intern(label)
	n.kids = stmts
	return n
}

// VarDecl builds a `[pub] const|var name: T = init;` top-level or
// local declaration. constant selects const vs var; init may be nil
// for an uninitialized extern declaration.
func (a *Arena) VarDecl(name string, typ, init *Node, pub, constant, extern bool) *Node {
	n := a.node(TagVarDecl)
	n.text = a.Intern(name)
	n.kids = []*Node{typ, init}
	n.pub, n.constant, n.extern = pub, constant, extern
	return n
}

// FuncDecl builds a function declaration/definition. params are
// alternating (name, typeExpr) pairs flattened into kids after
// returnType and body; body may be nil for an extern prototype.
func (a *Arena) FuncDecl(name string, returnType *Node, params []*Node, body *Node, pub, extern, inline, noReturn bool) *Node {
	n := a.node(TagFuncDecl)
	n.text = a.Intern(name)
	n.kids = append([]*Node{returnType, body}, params...)
	n.pub, n.extern, n.inline, n.noret = pub, extern, inline, noReturn
	return n
}

// TypeExpr wraps already-formatted Zig type syntax, e.g. "i32",
// "[*c]u8", "?fn (i32) callconv(.C) void".
func (a *Arena) TypeExpr(text string) *Node {
	n := a.node(TagTypeExpr)
	n.text = a.Intern(text)
	return n
}

// RecordType builds a struct/union/opaque type literal. kind is one
// of "struct", "union" or "opaque"; fields is empty for opaque.
func (a *Arena) RecordType(kind string, fields ...*Node) *Node {
	n := a.node(TagRecordType)
	n.text = a.Intern(kind)
	n.kids = fields
	return n
}

// PackedRecordType is RecordType with `__attribute__((packed))` threaded
// through: it renders as `packed struct { ... }`/`packed union { ... }`,
// matching C's guarantee that no padding is inserted between members.
// Never valid for kind "opaque" (there are no fields to pack).
func (a *Arena) PackedRecordType(kind string, fields ...*Node) *Node {
	n := a.RecordType(kind, fields...)
	n.packed = true
	return n
}

// Field builds `name: T` or, when align != 0, `name: T align(N)`.
func (a *Arena) Field(name string, typ *Node, align int64) *Node {
	n := a.node(TagField)
	n.text = a.Intern(name)
	n.kids = []*Node{typ}
	n.align = align
	return n
}

// EnumType builds `enum(tag) { enumerators }` or, when tagless is
// true, a tag-only `enum { ... }`.
func (a *Arena) EnumType(tagType string, tagless bool, enumerators ...*Node) *Node {
	n := a.node(TagEnumType)
	n.text = a.Intern(tagType)
	n.constant = tagless
	n.kids = enumerators
	return n
}

// Enumerator builds `name` or, when value is non-empty, `name = value`.
func (a *Arena) Enumerator(name, value string) *Node {
	n := a.node(TagField)
	n.text = a.Intern(name)
	n.text2 = a.Intern(value)
	return n
}

// Comment builds a standalone `// text` line, used for the warning
// comments ahead of demoted/diagnostic decls.
func (a *Arena) Comment(text string) *Node {
	n := a.node(TagComment)
	n.text = a.Intern(text)
	return n
}

// AsWarningComment reports whether n is a Comment node carrying a
// "warning: ..." diagnostic, returning the message with that prefix
// stripped.
func (n *Node) AsWarningComment() (string, bool) {
	if n.tag != TagComment {
		return "", false
	}
	const prefix = "warning: "
	if len(n.text) < len(prefix) || n.text[:len(prefix)] != prefix {
		return "", false
	}
	return n.text[len(prefix):], true
}

// IsFuncDecl reports whether n is a function declaration/definition,
// returning its name for convenience.
func (n *Node) IsFuncDecl() (name string, ok bool) {
	if n.tag != TagFuncDecl {
		return "", false
	}
	return n.text, true
}

// FuncDeclParamNames returns a FuncDecl's parameter names in order.
// Panics if n is not a FuncDecl.
func (n *Node) FuncDeclParamNames() []string {
	if n.tag != TagFuncDecl {
		panic("zigast: FuncDeclParamNames called on non-FuncDecl node")
	}
	params := n.kids[2:]
	names := make([]string, 0, len(params)/2)
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i].text)
	}
	return names
}

// FuncDeclBody returns a FuncDecl's body Block, or nil for an extern
// prototype. Panics if n is not a FuncDecl.
func (n *Node) FuncDeclBody() *Node {
	if n.tag != TagFuncDecl {
		panic("zigast: FuncDeclBody called on non-FuncDecl node")
	}
	return n.kids[1]
}

// Statements returns a Block node's statement list. Used by the
// statement lowerer when it needs to splice one lowered block's
// statements into another (e.g. do-while's body-then-break-check
// rewrite); panics if n is not a Block, since every call site already
// knows it built n as one.
func (n *Node) Statements() []*Node {
	if n.tag != TagBlock {
		panic("zigast: Statements called on non-Block node")
	}
	return n.kids
}

// Raw wraps already-rendered Zig source verbatim. The Finalizer uses it
// for the fixed usingnamespace-builtins preamble, and the lowerers use
// it for constructs spliced together as text (calls, indexing, member
// access, loops, switches, break/continue), where building a full node
// tree would add no clarity over the text already gives.
func (a *Arena) Raw(text string) *Node {
	n := a.node(TagRaw)
	n.text = a.Intern(text)
	return n
}
