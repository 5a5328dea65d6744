package suite

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/feather-lang/tclcore"
	"github.com/feather-lang/tclcore/internal/script"
)

// TestResult is the outcome of one case.
type TestResult struct {
	Suite    string
	TestCase TestCase
	Passed   bool
	Return   string
	Result   string
	Stdout   string
	Failures []string
}

// Runner runs suites in process.
type Runner struct {
	Config tclcore.Config
	Logger *slog.Logger
	// Filter, when set, selects cases by "suite > case" name.
	Filter *regexp.Regexp
}

// NewRunner returns a runner whose interpreters use cfg.
func NewRunner(cfg tclcore.Config) *Runner {
	return &Runner{Config: cfg}
}

// FullName is the display name of a case.
func FullName(s *TestSuite, tc *TestCase) string {
	return fmt.Sprintf("%s > %s", s.Name, tc.Name)
}

// RunSuite runs the selected cases of s in order.
func (r *Runner) RunSuite(s *TestSuite) []TestResult {
	results := make([]TestResult, 0, len(s.Cases))
	for idx := range s.Cases {
		tc := &s.Cases[idx]
		if r.Filter != nil && !r.Filter.MatchString(FullName(s, tc)) {
			continue
		}
		res := r.RunTest(*tc)
		res.Suite = s.Name
		results = append(results, res)
	}
	return results
}

// RunTest runs tc in a fresh interpreter and compares what it produced.
func (r *Runner) RunTest(tc TestCase) TestResult {
	result := TestResult{TestCase: tc, Passed: true}

	i := tclcore.NewWithConfig(r.Config)
	if r.Logger != nil {
		i.SetLogger(r.Logger)
	}
	script.Install(i)
	var stdout bytes.Buffer
	i.SetStdout(&stdout)

	res := i.Eval(tc.Script)
	result.Return = res.Code().String()
	result.Result = res.String()
	result.Stdout = strings.TrimSpace(stdout.String())

	fail := func(what, expected, actual string) {
		result.Passed = false
		result.Failures = append(result.Failures,
			fmt.Sprintf("%s mismatch:\n  expected: %q\n  actual:   %q", what, expected, actual))
	}
	if tc.Return != result.Return {
		fail("return", tc.Return, result.Return)
	}
	if tc.ResultSet && tc.Result != result.Result {
		fail("result", tc.Result, result.Result)
	}
	if tc.StdoutSet && tc.Stdout != result.Stdout {
		fail("stdout", tc.Stdout, result.Stdout)
	}
	return result
}

// Summary holds aggregate counts of a run.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// Summarize counts results.
func Summarize(results []TestResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// Reporter prints results.
type Reporter struct {
	Out     io.Writer
	Verbose bool
}

// ReportResult prints failures, and passes when verbose.
func (r *Reporter) ReportResult(file string, result TestResult) {
	name := result.Suite + " > " + result.TestCase.Name
	if result.Passed {
		if r.Verbose {
			fmt.Fprintf(r.Out, "PASS: %s: %s\n", file, name)
		}
		return
	}
	fmt.Fprintf(r.Out, "FAIL: %s: %s\n", file, name)
	for _, f := range result.Failures {
		fmt.Fprintf(r.Out, "  %s\n", f)
	}
}

// ReportSummary prints the totals.
func (r *Reporter) ReportSummary(s Summary) {
	fmt.Fprintf(r.Out, "\n%d tests, %d passed, %d failed\n", s.Total, s.Passed, s.Failed)
}

// Run collects, parses and runs the suites under paths, reporting to out.
// It returns the number of failed cases, or an error when a file cannot be
// read.
func (r *Runner) Run(paths []string, out io.Writer, verbose bool) (int, error) {
	files, err := CollectFiles(paths)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("no suite files found")
	}
	rep := &Reporter{Out: out, Verbose: verbose}
	var all []TestResult
	for _, f := range files {
		s, err := ParseFile(f)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", f, err)
		}
		results := r.RunSuite(s)
		for _, res := range results {
			rep.ReportResult(f, res)
		}
		all = append(all, results...)
	}
	sum := Summarize(all)
	rep.ReportSummary(sum)
	return sum.Failed, nil
}
