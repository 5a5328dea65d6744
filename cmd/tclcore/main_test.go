package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFitLine(t *testing.T) {
	tests := []struct {
		line  string
		width int
		want  string
	}{
		{"OPERATOR 1 \"+\"\n", 0, "OPERATOR 1 \"+\"\n"},
		{"OPERATOR 1 \"+\"\n", 40, "OPERATOR 1 \"+\"\n"},
		{"SUB_EXPR 5 \"1 + 2\"\n", 10, "SUB_EXP...\n"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		if got := fitLine(tt.line, tt.width); got != tt.want {
			t.Errorf("fitLine(%q, %d): expected %q, got %q", tt.line, tt.width, tt.want, got)
		}
	}
}

func TestHistoryPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := historyPath(""); got != "" {
		t.Errorf("expected empty path, got %q", got)
	}
	if got := historyPath("/tmp/h"); got != "/tmp/h" {
		t.Errorf("expected /tmp/h, got %q", got)
	}
	if got, want := historyPath("~/.tclcore_history"), filepath.Join(home, ".tclcore_history"); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestOptionsLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tclcore.yaml")
	data := "log_level: debug\nmax_error_context: 40\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	o := &options{configPath: path, noCache: true}
	if err := o.load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if o.cfg.LogLevel != "debug" {
		t.Errorf("expected log level from file, got %q", o.cfg.LogLevel)
	}
	if o.cfg.MaxErrorContext != 40 {
		t.Errorf("expected context 40, got %d", o.cfg.MaxErrorContext)
	}
	if !o.cfg.DisableVarNameCache {
		t.Error("expected --no-cache to disable the cache")
	}
	if o.cfg.RecursionLimit != 1000 {
		t.Errorf("expected default recursion limit, got %d", o.cfg.RecursionLimit)
	}

	o = &options{configPath: path, logLevel: "error"}
	if err := o.load(); err != nil {
		t.Fatal(err)
	}
	if o.cfg.LogLevel != "error" {
		t.Errorf("expected flag to override file, got %q", o.cfg.LogLevel)
	}

	o = &options{logLevel: "loud"}
	if err := o.load(); err == nil {
		t.Error("expected an error for an unknown log level")
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"eval", "expr", "repl", "test"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %s, got %v (%v)", name, cmd, err)
		}
	}
	for _, flag := range []string{"config", "log-level", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
}

func TestRunShellScript(t *testing.T) {
	o := &options{}
	if err := o.load(); err != nil {
		t.Fatal(err)
	}
	run := func(src string) (string, error) {
		path := filepath.Join(t.TempDir(), "script.tcl")
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		var out bytes.Buffer
		err = runShell(o, f, &out)
		return out.String(), err
	}

	out, err := run("set x 1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if out != "1\n" {
		t.Errorf("expected %q, got %q", "1\n", out)
	}

	if _, err := run("set nope"); !errors.Is(err, errReported) {
		t.Errorf("expected a failing script to return errReported, got %v", err)
	}
}
