// Package suite runs scripted test suites against tclcore interpreters.
//
// A suite file is XML:
//
//	<test-suite name="arrays">
//	  <test-case name="set and get">
//	    <script>array set a {x 1}; set a(x)</script>
//	    <return>ok</return>
//	    <result>1</result>
//	  </test-case>
//	</test-suite>
//
// Every case runs in a fresh interpreter. Return defaults to ok; result and
// stdout are compared only when present.
package suite

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TestCase is one scripted check.
type TestCase struct {
	Name      string
	Script    string
	Return    string // ok, error, return, break or continue
	Result    string
	ResultSet bool
	Stdout    string
	StdoutSet bool
}

// TestSuite is the parsed content of one suite file.
type TestSuite struct {
	Name  string
	Path  string
	Cases []TestCase
}

type xmlTestSuite struct {
	XMLName   xml.Name      `xml:"test-suite"`
	Name      string        `xml:"name,attr"`
	TestCases []xmlTestCase `xml:"test-case"`
}

type xmlTestCase struct {
	Name   string  `xml:"name,attr"`
	Script string  `xml:"script"`
	Return string  `xml:"return"`
	Result *string `xml:"result"`
	Stdout *string `xml:"stdout"`
}

// ParseFile parses the suite stored at path. A suite without a name is
// named after its file.
func ParseFile(path string) (*TestSuite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, err
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse reads a suite from r.
func Parse(r io.Reader) (*TestSuite, error) {
	var xs xmlTestSuite
	if err := xml.NewDecoder(r).Decode(&xs); err != nil {
		return nil, err
	}

	s := &TestSuite{Name: xs.Name, Cases: make([]TestCase, 0, len(xs.TestCases))}
	for _, x := range xs.TestCases {
		tc := TestCase{
			Name:   x.Name,
			Script: strings.TrimSpace(x.Script),
			Return: strings.TrimSpace(x.Return),
		}
		if tc.Return == "" {
			tc.Return = "ok"
		}
		if x.Result != nil {
			tc.Result, tc.ResultSet = strings.TrimSpace(*x.Result), true
		}
		if x.Stdout != nil {
			tc.Stdout, tc.StdoutSet = strings.TrimSpace(*x.Stdout), true
		}
		s.Cases = append(s.Cases, tc)
	}
	return s, nil
}

// CollectFiles finds the suite files named by paths. Directories are
// walked for files ending in .xml.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".xml" {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
