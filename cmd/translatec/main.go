// Command translatec translates a C translation unit to Target source
// on stdout.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
	"github.com/pbnjay/memory"
	"modernc.org/opt"

	"github.com/Rageoholic/zig/internal/translate"
)

func main() {
	if err := main1(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "translatec:", err)
		os.Exit(1)
	}
}

type config struct {
	pkg     string
	verbose bool
	cflags  string
	files   []string
}

func main1(args []string) error {
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(cfg.files) == 0 {
		return fmt.Errorf("no input files")
	}

	var sources []translate.Source
	for _, def := range cfg.defines() {
		sources = append(sources, translate.Source{Name: "<cflags>", Value: def})
	}
	for _, path := range cfg.files {
		b, rerr := os.ReadFile(path)
		if rerr != nil {
			return rerr
		}
		sources = append(sources, translate.Source{Name: path, Value: string(b)})
	}

	result, err := translate.Translate(translate.Options{
		PackageName: cfg.pkg,
		Verbose:     cfg.verbose,
	}, sources)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		if cfg.verbose {
			fmt.Fprintln(os.Stderr, "translatec: warning:", w)
		}
	}

	if cfg.verbose {
		reportSizing(result)
	}

	_, err = fmt.Fprint(os.Stdout, result.Source)
	return err
}

// defines turns a -cflags string's -D tokens into synthetic `#define`
// source fragments prepended ahead of the real input files, the same
// role a C compiler's own -D flag plays: a predefined macro must be
// visible to the Declaration Visitor and macro translator exactly as
// if it had appeared at the top of the first translation unit.
func (c config) defines() []string {
	var out []string
	for _, tok := range c.cflagsTokens() {
		if rest := trimPrefix(tok, "-D"); rest != tok {
			out = append(out, "#define "+defineBody(rest)+"\n")
		}
	}
	return out
}

func (c config) cflagsTokens() []string {
	if c.cflags == "" {
		return nil
	}
	toks, err := shellquote.Split(c.cflags)
	if err != nil {
		return nil
	}
	return toks
}

func trimPrefix(s, prefix string) string {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// defineBody turns a NAME=VALUE or bare NAME token (both legal after
// -D on a real C compiler) into the text that follows #define.
func defineBody(rest string) string {
	for i := 0; i < len(rest); i++ {
		if rest[i] == '=' {
			return rest[:i] + " " + rest[i+1:]
		}
	}
	return rest + " 1"
}

// reportSizing prints the same kind of before/after size diagnostic
// ccgo's own all_test.go emits per corpus file under -dmesg, scaled
// down to the single output this translator produces: output size via
// go-humanize, and the host's total memory via pbnjay/memory so a
// large translation unit's relative cost is visible at a glance.
func reportSizing(result translate.Result) {
	fmt.Fprintf(os.Stderr, "translatec: output %s, host memory %s\n",
		humanize.Bytes(uint64(len(result.Source))),
		humanize.Bytes(memory.TotalMemory()),
	)
}

// parseArgs implements the small flag surface: -pkg NAME, stored as
// Options.PackageName (the rendered output does not use it), -v for
// verbose warnings,
// -cflags for predefined -D macros, remaining positional arguments as
// input files. Grounded on ccgo/v4's own NewTask(goos, goarch, args,
// ...) convention of driving everything off one argv slice rather than
// package-global flags, via modernc.org/opt's Set in place of ccgo's
// hand-rolled argv scan.
func parseArgs(args []string) (config, error) {
	var cfg config
	set := opt.NewSet()
	set.Arg("pkg", true, func(arg, val string) error {
		cfg.pkg = val
		return nil
	})
	set.Opt("v", func(arg string) error {
		cfg.verbose = true
		return nil
	})
	set.Arg("cflags", true, func(arg, val string) error {
		cfg.cflags = val
		return nil
	})
	if err := set.Parse(args, func(arg string) error {
		cfg.files = append(cfg.files, arg)
		return nil
	}); err != nil {
		return config{}, err
	}
	return cfg, nil
}
