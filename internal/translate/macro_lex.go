package translate

import (
	"strings"
	"unicode"

	"modernc.org/token"
)

// macroTokKind classifies a pre-tokenized macro-body token for the
// precedence-climbing parser in macro_parse.go.
type macroTokKind int

const (
	mtEOF macroTokKind = iota
	mtIdent
	mtNumber
	mtString
	mtChar
	mtPunct
)

type macroTok struct {
	kind macroTokKind
	text string
	pos  token.Position
}

// macroLexer re-tokenizes a macro body's already-expanded source text:
// the C front-end hands the translator the macro body as raw source
// text rather than a token stream, so this is a small hand-rolled
// lexer in the same spirit as cc/v4's own
// preprocessor tokenizer, scoped to exactly what macro bodies need
// (no line continuations, no further macro expansion). file backs each
// token's reported position with the same modernc.org/token.File the
// front-end itself uses for Node.Position(), so a macro-parser
// diagnostic reads like a decl-visitor one.
type macroLexer struct {
	src  string
	pos  int
	file *token.File
}

func newMacroLexer(src string) *macroLexer {
	return &macroLexer{src: src, file: token.NewFile("", len(src))}
}

// newNamedMacroLexer is newMacroLexer with a real file name, used by
// the parser so a macro-body diagnostic's position names the macro
// itself rather than an empty string.
func newNamedMacroLexer(name, src string) *macroLexer {
	return &macroLexer{src: src, file: token.NewFile(name, len(src))}
}

func (l *macroLexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// skipTrivia consumes whitespace and comments
// comments" — macro bodies can legally contain a `/* ... */` comment
// the front-end left untouched.
func (l *macroLexer) skipTrivia() {
	for l.pos < len(l.src) {
		switch {
		case isSpace(l.peekByte()):
			l.pos++
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			if end := strings.Index(l.src[l.pos+2:], "*/"); end >= 0 {
				l.pos += end + 4
			} else {
				l.pos = len(l.src)
			}
		case strings.HasPrefix(l.src[l.pos:], "//"):
			if end := strings.IndexByte(l.src[l.pos:], '\n'); end >= 0 {
				l.pos += end
			} else {
				l.pos = len(l.src)
			}
		default:
			return
		}
	}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

// Next returns the next token, or an mtEOF token at end of input.
func (l *macroLexer) Next() macroTok {
	l.skipTrivia()
	if l.pos >= len(l.src) {
		return macroTok{kind: mtEOF}
	}
	start := l.pos
	r := rune(l.src[l.pos])
	pos := l.file.Position(start)

	switch {
	case isIdentStart(r):
		for l.pos < len(l.src) && isIdentCont(rune(l.src[l.pos])) {
			l.pos++
		}
		return macroTok{kind: mtIdent, text: l.src[start:l.pos], pos: pos}

	case unicode.IsDigit(r):
		l.lexNumber()
		return macroTok{kind: mtNumber, text: l.src[start:l.pos], pos: pos}

	case r == '"':
		l.lexQuoted('"')
		return macroTok{kind: mtString, text: l.src[start:l.pos], pos: pos}

	case r == '\'':
		l.lexQuoted('\'')
		return macroTok{kind: mtChar, text: l.src[start:l.pos], pos: pos}

	default:
		l.pos += punctLen(l.src[l.pos:])
		return macroTok{kind: mtPunct, text: l.src[start:l.pos], pos: pos}
	}
}

// lexNumber consumes a C numeric-literal token including hex/octal
// prefixes, an exponent, and trailing u/l/ul/ll/f suffixes — the raw
// text is handed to cast.go's classifyLiteralSuffix/foldInt128Literal
// by the parser.
func (l *macroLexer) lexNumber() {
	if strings.HasPrefix(l.src[l.pos:], "0x") || strings.HasPrefix(l.src[l.pos:], "0X") {
		l.pos += 2
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
	} else {
		for l.pos < len(l.src) && (unicode.IsDigit(rune(l.src[l.pos])) || l.src[l.pos] == '.') {
			l.pos++
		}
		if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
			for l.pos < len(l.src) && unicode.IsDigit(rune(l.src[l.pos])) {
				l.pos++
			}
		}
	}
	for l.pos < len(l.src) && strings.ContainsRune("uUlLfF", rune(l.src[l.pos])) {
		l.pos++
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (l *macroLexer) lexQuoted(q byte) {
	l.pos++ // opening quote
	for l.pos < len(l.src) {
		if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
			l.pos += 2
			continue
		}
		if l.src[l.pos] == q {
			l.pos++
			return
		}
		l.pos++
	}
}

var multiCharPuncts = []string{
	"<<=", ">>=", "...", "->", "++", "--", "<<", ">>", "<=", ">=",
	"==", "!=", "&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "##",
}

func punctLen(rest string) int {
	for _, p := range multiCharPuncts {
		if strings.HasPrefix(rest, p) {
			return len(p)
		}
	}
	return 1
}

// isFunctionLikeBody reports whether name's macro body, in the
// original source text immediately following the macro name, opens
// with `(` with no intervening space — the textual test used to
// classify function-like vs object-like macros (the front-end already
// distinguishes these during preprocessing).
func isFunctionLikeBody(nameAndRest string, name string) bool {
	rest := strings.TrimPrefix(nameAndRest, name)
	return strings.HasPrefix(rest, "(")
}
