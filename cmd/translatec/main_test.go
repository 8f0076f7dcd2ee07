package main

import (
	"reflect"
	"testing"
)

func TestConfigDefines(t *testing.T) {
	cfg := config{cflags: `-DLIMIT=8 -DDEBUG "-DNAME=hello world"`}
	got := cfg.defines()
	want := []string{
		"#define LIMIT 8\n",
		"#define DEBUG 1\n",
		"#define NAME hello world\n",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("defines() = %#v, want %#v", got, want)
	}
}

func TestConfigDefinesEmpty(t *testing.T) {
	var cfg config
	if got := cfg.defines(); got != nil {
		t.Fatalf("defines() = %#v, want nil", got)
	}
}
