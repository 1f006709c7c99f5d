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

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/playfetch/playfetch/internal/logging"
	"github.com/playfetch/playfetch/internal/test"
	"github.com/playfetch/playfetch/pkg/action"
	"github.com/playfetch/playfetch/pkg/cli"
)

func runTestCmd(t *testing.T, tests []cmdTestCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer resetEnv()()

			t.Logf("running cmd: %s", tt.cmd)
			_, out, err := executeActionCommandC(actionConfigFixture(t), tt.cmd)
			if tt.wantError && err == nil {
				t.Errorf("expected error, got success with the following output:\n%s", out)
			}
			if !tt.wantError && err != nil {
				t.Errorf("expected no error, got: '%v'", err)
			}
			if tt.golden != "" {
				test.AssertGoldenString(t, out, tt.golden, tt.replace...)
			}
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
		})
	}
}

// cmdTestCase describes a test case for a single command line.
type cmdTestCase struct {
	name   string
	cmd    string
	golden string
	// replace holds old, new pairs applied to the output before it is
	// compared with the golden file.
	replace   []string
	contains  []string
	wantError bool
}

func actionConfigFixture(t *testing.T) *action.Configuration {
	t.Helper()
	cfg := new(action.Configuration)
	cfg.SetLogger(logging.NewHandler(io.Discard, func() bool { return false }))
	return cfg
}

func executeActionCommandC(cfg *action.Configuration, cmd string) (*cobra.Command, string, error) {
	args, err := shellwords.Parse(cmd)
	if err != nil {
		return nil, "", err
	}

	buf := new(bytes.Buffer)

	root, err := newRootCmdWithConfig(cfg, buf, args)
	if err != nil {
		return nil, "", err
	}

	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	c, err := root.ExecuteC()

	return c, buf.String(), err
}

func executeActionCommand(t *testing.T, cmd string) (*cobra.Command, string, error) {
	return executeActionCommandC(actionConfigFixture(t), cmd)
}

func resetEnv() func() {
	origEnv := os.Environ()
	return func() {
		os.Clearenv()
		for _, pair := range origEnv {
			kv := strings.SplitN(pair, "=", 2)
			os.Setenv(kv[0], kv[1])
		}
		settings = cli.New()
	}
}

// isolate points every playfetch location at temporary directories and
// clears the PLAYFETCH_* variables of the host.
func isolate(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PLAYFETCH_") {
			t.Setenv(strings.SplitN(kv, "=", 2)[0], "")
			os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
		}
	}
	t.Setenv("PLAYFETCH_CONFIG_HOME", t.TempDir())
	t.Setenv("PLAYFETCH_CACHE_HOME", t.TempDir())
	t.Setenv("LANG", "en_US.UTF-8")
	settings = cli.New()
	t.Cleanup(func() { settings = cli.New() })
}

// storefront is a dispenser, store API and CDN in one test server.
type storefront struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newStorefront(t *testing.T) *storefront {
	t.Helper()
	s := &storefront{hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *storefront) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.mu.Unlock()

	switch r.URL.Path {
	case "/auth":
		fmt.Fprint(w, `{"email":"anon@example.com","auth":"dispensed"}`)
	case "/api/details":
		if r.URL.Query().Get("doc") != "com.example.app" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `{"packageName":"com.example.app","versionCode":31,"versionName":"3.1","title":"Example","offerType":1}`)
	case "/api/purchase":
		json.NewEncoder(w).Encode(map[string]any{"files": []map[string]any{
			{"name": "", "url": s.URL + "/cdn/base"},
			{"name": "split_config.xxhdpi.apk", "url": s.URL + "/cdn/split"},
			{"name": "split_broken.apk", "url": s.URL + "/cdn/broken"},
		}})
	case "/cdn/base":
		fmt.Fprint(w, "base")
	case "/cdn/split":
		fmt.Fprint(w, "split")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *storefront) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *storefront) flags() string {
	return fmt.Sprintf("--dispenser %s/auth --store-url %s/api", s.URL, s.URL)
}
