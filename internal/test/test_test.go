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

package test

import (
	"fmt"
	"strings"
	"testing"
)

type recorder struct {
	failures []string
}

func (r *recorder) Helper() {}

func (r *recorder) Fatalf(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func TestAssertGoldenStringReplaces(t *testing.T) {
	r := &recorder{}
	AssertGoldenString(r, "home is /tmp/TestHome001\r\n", "home.txt", "/tmp/TestHome001", "$HOME")
	if len(r.failures) != 0 {
		t.Errorf("expected a match, got %v", r.failures)
	}
}

func TestAssertGoldenStringDiff(t *testing.T) {
	if *updateGolden {
		t.Skip("would rewrite the golden file")
	}
	r := &recorder{}
	AssertGoldenString(r, "home is /root\n", "home.txt")
	if len(r.failures) != 1 {
		t.Fatalf("expected one failure, got %v", r.failures)
	}
	for _, want := range []string{"-home is $HOME", "+home is /root", "-update"} {
		if !strings.Contains(r.failures[0], want) {
			t.Errorf("expected %q in %q", want, r.failures[0])
		}
	}
}

func TestAssertGoldenStringOddReplacements(t *testing.T) {
	r := &recorder{}
	AssertGoldenString(r, "home is $HOME\n", "home.txt", "/root")
	if len(r.failures) == 0 {
		t.Error("expected a failure for an unpaired replacement")
	}
}
