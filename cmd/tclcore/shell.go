package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/feather-lang/tclcore"
	"github.com/feather-lang/tclcore/internal/script"
)

const continuationPrompt = "> "

// errReported fails a command whose error has already been printed.
var errReported = errors.New("error already reported")

// runShell reads commands interactively when in is a terminal and evaluates
// it as one script otherwise.
func runShell(o *options, in *os.File, out io.Writer) error {
	i := o.newInterp(out)
	if !term.IsTerminal(int(in.Fd())) {
		src, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		res := i.Eval(string(src))
		printResult(out, res)
		if res.Code() == tclcore.ResultError {
			return errReported
		}
		return nil
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	history := historyPath(o.cfg.HistoryFile)
	if history != "" {
		if f, err := os.Open(history); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			f, err := os.Create(history)
			if err != nil {
				o.logger.Warn("cannot save history", "file", history, "err", err)
				return
			}
			defer f.Close()
			if _, err := ln.WriteHistory(f); err != nil {
				o.logger.Warn("cannot save history", "file", history, "err", err)
			}
		}()
	}

	var buf strings.Builder
	for {
		prompt := o.cfg.Prompt
		if buf.Len() > 0 {
			prompt = continuationPrompt
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			buf.Reset()
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		src := buf.String()
		if !script.Complete(src) {
			continue
		}
		buf.Reset()
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(src)
		printResult(out, i.Eval(src))
	}
}

func printResult(out io.Writer, res tclcore.Result) {
	if res.Code() == tclcore.ResultError {
		fmt.Fprintf(os.Stderr, "error: %s\n", res.String())
		return
	}
	if s := res.String(); s != "" {
		fmt.Fprintln(out, s)
	}
}

// historyPath expands a leading ~ in the configured history file.
func historyPath(p string) string {
	if p == "" {
		return ""
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, p[1:])
	}
	return p
}
