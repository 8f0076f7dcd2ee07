package translate

import "testing"

func TestMacroLexerTokens(t *testing.T) {
	cases := []struct {
		src  string
		want []string
	}{
		{"1 + 2", []string{"1", "+", "2"}},
		{"(x) * y", []string{"(", "x", ")", "*", "y"}},
		{`"a" "b"`, []string{`"a"`, `"b"`}},
		{"a->b", []string{"a", "->", "b"}},
		{"x << 2", []string{"x", "<<", "2"}},
		{"/* c */ 0x1Fu", []string{"0x1Fu"}},
	}
	for _, tc := range cases {
		lx := newMacroLexer(tc.src)
		var got []string
		for {
			tok := lx.Next()
			if tok.kind == mtEOF {
				break
			}
			got = append(got, tok.text)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.src, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%q: token %d = %q, want %q", tc.src, i, got[i], tc.want[i])
			}
		}
	}
}

func TestMacroLexerSkipsLineComment(t *testing.T) {
	lx := newMacroLexer("1 // trailing note\n+ 2")
	var got []string
	for {
		tok := lx.Next()
		if tok.kind == mtEOF {
			break
		}
		got = append(got, tok.text)
	}
	want := []string{"1", "+", "2"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPunctLenPrefersLongestMatch(t *testing.T) {
	cases := map[string]int{
		"<<=x": 3,
		"<<x":  2,
		"<x":   1,
		"...x": 3,
		"->x":  2,
	}
	for rest, want := range cases {
		if got := punctLen(rest); got != want {
			t.Errorf("punctLen(%q) = %d, want %d", rest, got, want)
		}
	}
}
