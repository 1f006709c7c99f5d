/*
Copyright The Playfetch Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package test compares command output against golden files in testdata.
// Run the tests with -update to rewrite the files from the current output.
package test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

var updateGolden = flag.Bool("update", false, "update golden files")

// TestingT is the part of testing.T the assertions need.
type TestingT interface {
	Fatalf(string, ...interface{})
	Helper()
}

// AssertGoldenString asserts that actual matches the golden file. Output that
// carries machine specific text, such as temporary directories, is passed
// old, new pairs in replace; every old is rewritten to its new before the
// comparison and before an update.
func AssertGoldenString(t TestingT, actual, filename string, replace ...string) {
	t.Helper()
	if len(replace)%2 != 0 {
		t.Fatalf("replacements for %s must come in old, new pairs", filename)
		return
	}
	if len(replace) > 0 {
		actual = strings.NewReplacer(replace...).Replace(actual)
	}
	if err := compare([]byte(actual), goldenPath(filename)); err != nil {
		t.Fatalf("%v", err)
	}
}

func goldenPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join("testdata", filename)
}

func compare(actual []byte, filename string) error {
	actual = normalize(actual)
	if *updateGolden {
		if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(filename, actual, 0644); err != nil {
			return err
		}
	}

	expected, err := os.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "unable to read testdata %s", filename)
	}
	expected = normalize(expected)
	if bytes.Equal(expected, actual) {
		return nil
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(expected)),
		B:        difflib.SplitLines(string(actual)),
		FromFile: filename,
		ToFile:   "output",
		Context:  2,
	})
	return errors.Errorf("output does not match golden file %s (run with -update to accept it)\n%s", filename, diff)
}

func normalize(in []byte) []byte {
	return bytes.ReplaceAll(in, []byte("\r\n"), []byte("\n"))
}
