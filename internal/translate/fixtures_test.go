package translate_test

import (
	"strings"
	"testing"

	"github.com/rogpeppe/go-internal/txtar"

	"github.com/Rageoholic/zig/internal/translate"
)

// TestTranslateFixtures drives scenarios (some shared with
// TestTranslateScenarios, plus a used post-increment) from an on-disk
// txtar archive, the way
// cue-lang/cue's script tests keep named source fixtures out of the Go
// source itself, so a new scenario can be added to
// testdata/scenarios.txtar without touching this file.
func TestTranslateFixtures(t *testing.T) {
	ar, err := txtar.ParseFile("testdata/scenarios.txtar")
	if err != nil {
		t.Fatalf("txtar.ParseFile: %v", err)
	}
	want := map[string][]string{
		"identity_typedef.c":     {"c_int"},
		"bitfield_opaque.c":      {"opaque {}"},
		"signed_modulus.c":       {"@rem("},
		"post_increment_used.c":  {"break :blk"},
	}
	for _, f := range ar.Files {
		t.Run(f.Name, func(t *testing.T) {
			result, err := translate.Translate(translate.Options{}, []translate.Source{
				{Name: f.Name, Value: string(f.Data)},
			})
			if err != nil {
				t.Fatalf("Translate: %v", err)
			}
			for _, sub := range want[f.Name] {
				if !strings.Contains(result.Source, sub) {
					t.Errorf("%s: output missing %q, got:\n%s", f.Name, sub, result.Source)
				}
			}
		})
	}
}
