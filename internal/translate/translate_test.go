package translate_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/Rageoholic/zig/internal/translate"
)

// end-to-end scenarios cover: identity typedef, opaque demotion by
// bit-field, a packed record, signed modulus, an object-like macro, a
// function-like macro, and an octal-literal macro.
func TestTranslateScenarios(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		wantIn []string
	}{
		{
			name: "identity typedef",
			src:  "typedef int my_int;\n",
			wantIn: []string{
				"c_int",
			},
		},
		{
			name: "bitfield demotes record to opaque",
			src:  "struct flags { unsigned a : 1; unsigned b : 2; };\n",
			wantIn: []string{
				"opaque {}",
			},
		},
		{
			name: "packed attribute threads into record type",
			src:  "struct __attribute__((packed)) wire { char a; int b; };\n",
			wantIn: []string{
				"packed struct {",
			},
		},
		{
			name: "signed modulus uses @rem",
			src:  "int mod(int a, int b) { return a % b; }\n",
			wantIn: []string{
				"@rem(",
			},
		},
		{
			name: "object-like macro",
			src:  "#define LIMIT 8\n",
			wantIn: []string{
				"LIMIT",
			},
		},
		{
			name: "function-like macro",
			src:  "#define SQUARE(x) ((x) * (x))\n",
			wantIn: []string{
				"SQUARE",
				"fn ",
			},
		},
		{
			name: "octal literal macro",
			src:  "#define MASK 010\n",
			wantIn: []string{
				"MASK",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := translate.Translate(translate.Options{PackageName: "demo"}, []translate.Source{
				{Name: tc.name + ".c", Value: tc.src},
			})
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			for _, want := range tc.wantIn {
				if !strings.Contains(result.Source, want) {
					diff := difflib.UnifiedDiff{
						A:        difflib.SplitLines(want),
						B:        difflib.SplitLines(result.Source),
						FromFile: "want substring",
						ToFile:   "got output",
						Context:  2,
					}
					text, _ := difflib.GetUnifiedDiffString(diff)
					t.Errorf("output missing %q\n%s", want, text)
				}
			}
		})
	}
}

// TestTranslateGotoDemotesToCompileError checks that a function using
// goto - a common real-world cleanup-chain idiom Zig has no statement
// label/goto construct for - is demoted to a @compileError diagnostic
// rather than emitting a `goto name` fragment Zig can't parse.
func TestTranslateGotoDemotesToCompileError(t *testing.T) {
	src := []translate.Source{{Name: "a.c", Value: "int f(int x) {\n  if (x < 0) goto done;\n  x = x + 1;\ndone:\n  return x;\n}\n"}}
	result, err := translate.Translate(translate.Options{}, src)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !strings.Contains(result.Source, "@compileError") {
		t.Fatalf("output missing @compileError diagnostic, got:\n%s", result.Source)
	}
	if strings.Contains(result.Source, "goto done") || strings.Contains(result.Source, "done:\n") {
		t.Fatalf("output must not emit invalid goto/label syntax, got:\n%s", result.Source)
	}
	if len(result.Warnings) == 0 {
		t.Fatalf("expected a warning for the unsupported goto")
	}
}

// TestTranslateIdempotent checks that translating the same input twice
// produces byte-identical output, since nothing in the pipeline may
// depend on Go's randomized map iteration order.
func TestTranslateIdempotent(t *testing.T) {
	src := []translate.Source{{Name: "a.c", Value: "struct p { int x; int y; };\nint add(struct p *v) { return v->x + v->y; }\n"}}
	first, err := translate.Translate(translate.Options{}, src)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	second, err := translate.Translate(translate.Options{}, src)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if diff := cmp.Diff(first.Source, second.Source); diff != "" {
		t.Errorf("translation not idempotent (-first +second):\n%s", diff)
	}
}
