// tclcore is a small front end to the tclcore runtime: it evaluates scripts,
// dumps expression parse trees, runs scripted test suites and provides an
// interactive shell.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/feather-lang/tclcore"
	"github.com/feather-lang/tclcore/expr"
	"github.com/feather-lang/tclcore/internal/script"
	"github.com/feather-lang/tclcore/internal/suite"
)

type options struct {
	configPath string
	logLevel   string
	noCache    bool

	cfg    tclcore.Config
	logger *slog.Logger
}

func (o *options) addFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "path to a YAML configuration file")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&o.noCache, "no-cache", false, "disable the variable name cache")
}

// load resolves the configuration from defaults, the config file and flags,
// in that order.
func (o *options) load() error {
	o.cfg = tclcore.DefaultConfig()
	if o.configPath != "" {
		cfg, err := tclcore.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		o.cfg = cfg
	}
	if o.logLevel != "" {
		o.cfg.LogLevel = o.logLevel
	}
	if o.noCache {
		o.cfg.DisableVarNameCache = true
	}
	level, err := tclcore.ParseLogLevel(o.cfg.LogLevel)
	if err != nil {
		return err
	}
	o.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (o *options) newInterp(stdout io.Writer) *tclcore.Interp {
	i := tclcore.NewWithConfig(o.cfg)
	i.SetLogger(o.logger)
	i.SetStdout(stdout)
	script.Install(i)
	return i
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "tclcore",
		Short:         "Tcl variable and value runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(o, os.Stdin, os.Stdout)
		},
	}
	o.addFlags(root.PersistentFlags())

	root.AddCommand(
		newEvalCommand(o),
		newExprCommand(o),
		newReplCommand(o),
		newTestCommand(o),
	)
	return root
}

func newEvalCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <file|->",
		Short: "Evaluate a script file, or standard input when the file is -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src []byte
			var err error
			if args[0] == "-" {
				src, err = io.ReadAll(os.Stdin)
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}
			i := o.newInterp(os.Stdout)
			res := i.Eval(string(src))
			printResult(os.Stdout, res)
			if res.Code() == tclcore.ResultError {
				return errReported
			}
			return nil
		},
	}
}

func newExprCommand(o *options) *cobra.Command {
	var tree bool
	cmd := &cobra.Command{
		Use:   "expr <expression>",
		Short: "Parse an expression and print its token array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := expr.Parser{Context: o.cfg.MaxErrorContext}
			tokens, err := p.Parse(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return errReported
			}
			if tree {
				n, err := expr.Rebuild(tokens)
				if err != nil {
					return err
				}
				fmt.Println(n)
				return nil
			}
			var sb strings.Builder
			if err := expr.Dump(&sb, tokens); err != nil {
				return err
			}
			width := 0
			if term.IsTerminal(int(os.Stdout.Fd())) {
				if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					width = w
				}
			}
			for _, line := range strings.SplitAfter(sb.String(), "\n") {
				fmt.Print(fitLine(line, width))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tree, "tree", false, "print the rebuilt operator tree instead of tokens")
	return cmd
}

// fitLine shortens a dump line to the terminal width. A width of zero
// leaves it alone.
func fitLine(line string, width int) string {
	body := strings.TrimSuffix(line, "\n")
	if width <= 3 || len(body) <= width {
		return line
	}
	return body[:width-3] + "...\n"
}

func newReplCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(o, os.Stdin, os.Stdout)
		},
	}
}

func newTestCommand(o *options) *cobra.Command {
	var (
		run     string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "test [flags] <suite-files-or-dirs>...",
		Short: "Run scripted test suites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := suite.NewRunner(o.cfg)
			r.Logger = o.logger
			if run != "" {
				re, err := regexp.Compile(run)
				if err != nil {
					return fmt.Errorf("invalid --run pattern: %w", err)
				}
				r.Filter = re
			}
			failed, err := r.Run(args, os.Stdout, verbose)
			if err != nil {
				return err
			}
			if failed > 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&run, "run", "", "only run cases whose \"suite > case\" name matches this regexp")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "report passing cases too")
	return cmd
}
