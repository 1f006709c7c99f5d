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

package downloader

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playfetch/playfetch/pkg/store"
)

func TestPrepareDestination(t *testing.T) {
	root := t.TempDir()

	t.Run("missing directory is created", func(t *testing.T) {
		dir := filepath.Join(root, "a", "b")
		var out bytes.Buffer
		require.NoError(t, PrepareDestination(dir, &out))
		assert.DirExists(t, dir)
		assert.Equal(t, fmt.Sprintf("Creating directory %s to save downloaded app into.\n", dir), out.String())
	})

	t.Run("existing directory is used as is", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, PrepareDestination(root, &out))
		assert.Empty(t, out.String())
	})

	t.Run("existing file", func(t *testing.T) {
		file := filepath.Join(root, "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		err := PrepareDestination(file, nil)
		var dpe *DestinationPathError
		require.True(t, errors.As(err, &dpe))
		assert.Equal(t, file, dpe.Path)
		assert.EqualError(t, err, file+" already exists and is not a directory")
	})

	t.Run("empty", func(t *testing.T) {
		assert.Error(t, PrepareDestination("", nil))
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "base.apk", DisplayName(store.File{}))
	assert.Equal(t, "base.apk", DisplayName(store.File{Name: "  "}))
	assert.Equal(t, "split_config.arm64_v8a.apk", DisplayName(store.File{Name: "split_config.arm64_v8a.apk"}))
}

func fileServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/base":
			fmt.Fprint(w, "base-bytes")
		case "/split":
			fmt.Fprint(w, "split-bytes")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExecute(t *testing.T) {
	srv := fileServer(t)
	dir := t.TempDir()

	files := []store.File{
		{Name: "", URL: srv.URL + "/base"},
		{Name: "missing.apk", URL: srv.URL + "/missing"},
		{Name: "split.apk", URL: srv.URL + "/split"},
	}

	var out bytes.Buffer
	var seen []string
	e := &Executor{
		Out:      &out,
		OnResult: func(r Result) { seen = append(seen, r.Name) },
	}
	results, err := e.Execute(files, dir)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"base.apk", "missing.apk", "split.apk"}, seen)

	assert.True(t, results[0].Success())
	assert.Equal(t, filepath.Join(dir, "base.apk"), results[0].Path)
	assert.Equal(t, int64(len("base-bytes")), results[0].Bytes)
	assert.Equal(t, http.StatusOK, results[0].StatusCode)

	assert.False(t, results[1].Success())
	assert.EqualError(t, results[1].Err, "non-success status 404")
	assert.Equal(t, http.StatusNotFound, results[1].StatusCode)
	assert.NoFileExists(t, filepath.Join(dir, "missing.apk"))

	assert.True(t, results[2].Success())

	b, err := os.ReadFile(filepath.Join(dir, "base.apk"))
	require.NoError(t, err)
	assert.Equal(t, "base-bytes", string(b))
	b, err = os.ReadFile(filepath.Join(dir, "split.apk"))
	require.NoError(t, err)
	assert.Equal(t, "split-bytes", string(b))

	want := strings.Join([]string{
		"Downloading base.apk...",
		"Saved to " + filepath.Join(dir, "base.apk"),
		"Downloading missing.apk...",
		"Failed to download missing.apk: non-success status 404",
		"Downloading split.apk...",
		"Saved to " + filepath.Join(dir, "split.apk"),
	}, "\n") + "\n"
	assert.Equal(t, want, out.String())
}

func TestExecuteEmpty(t *testing.T) {
	results, err := (&Executor{}).Execute(nil, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestExecuteOverwrites(t *testing.T) {
	srv := fileServer(t)
	dir := t.TempDir()
	target := filepath.Join(dir, "base.apk")
	require.NoError(t, os.WriteFile(target, []byte("a much longer previous file body"), 0644))

	files := []store.File{{URL: srv.URL + "/base"}}
	for i := 0; i < 2; i++ {
		results, err := (&Executor{}).Execute(files, dir)
		require.NoError(t, err)
		require.True(t, results[0].Success())

		b, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "base-bytes", string(b))
	}
}

func TestExecuteNoCustomHeaders(t *testing.T) {
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	_, err := (&Executor{}).Execute([]store.File{{URL: srv.URL}}, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, header.Get("Authorization"))
	assert.True(t, strings.HasPrefix(header.Get("User-Agent"), "Go-http-client/"))
}

func TestExecuteStaysInsideDestination(t *testing.T) {
	srv := fileServer(t)
	root := t.TempDir()
	dir := filepath.Join(root, "out")
	require.NoError(t, os.Mkdir(dir, 0755))

	results, err := (&Executor{}).Execute([]store.File{{Name: "../escape.apk", URL: srv.URL + "/base"}}, dir)
	require.NoError(t, err)
	require.True(t, results[0].Success(), "%v", results[0].Err)

	assert.NoFileExists(t, filepath.Join(root, "escape.apk"))
	assert.FileExists(t, filepath.Join(dir, "escape.apk"))
}

func TestExecuteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	href := srv.URL
	srv.Close()

	results, err := (&Executor{}).Execute([]store.File{{Name: "a.apk", URL: href}, {Name: "b.apk", URL: href}}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
		assert.Equal(t, 0, r.StatusCode)
	}
}

func TestExecuteRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "eventually")
	}))
	defer srv.Close()
	files := []store.File{{URL: srv.URL}}

	results, err := (&Executor{}).Execute(files, t.TempDir())
	require.NoError(t, err)
	assert.EqualError(t, results[0].Err, "non-success status 503")
	assert.Equal(t, int32(1), calls.Load(), "no retry by default")

	calls.Store(0)
	results, err = (&Executor{Retries: 2, RetryBackoff: time.Millisecond}).Execute(files, t.TempDir())
	require.NoError(t, err)
	assert.True(t, results[0].Success())
	assert.Equal(t, int32(2), calls.Load())
}

func TestExecuteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	results, err := (&Executor{Retries: 3, RetryBackoff: time.Millisecond}).Execute([]store.File{{URL: srv.URL}}, t.TempDir())
	require.NoError(t, err)
	assert.EqualError(t, results[0].Err, "non-success status 410")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryPolicy(t *testing.T) {
	p := (&Executor{}).retryPolicy()
	assert.Equal(t, backoff.Stop, p.NextBackOff(), "no retry by default")

	// long retry chains stay within the cap and never go negative
	p = (&Executor{Retries: 200, RetryBackoff: time.Second}).retryPolicy()
	p.Reset()
	for i := 0; i < 200; i++ {
		d := p.NextBackOff()
		require.Greater(t, d, time.Duration(0), "attempt %d", i+1)
		require.LessOrEqual(t, d, maxRetryBackoff*3/2, "attempt %d", i+1)
	}
	assert.Equal(t, backoff.Stop, p.NextBackOff())

	p = (&Executor{Retries: 1}).retryPolicy()
	p.Reset()
	d := p.NextBackOff()
	assert.GreaterOrEqual(t, d, defaultRetryBackoff/2)
	assert.LessOrEqual(t, d, defaultRetryBackoff*3/2)
}

func TestExecuteVerifySize(t *testing.T) {
	srv := fileServer(t)
	files := []store.File{
		{Name: "short.apk", URL: srv.URL + "/base", Size: 1000},
		{Name: "exact.apk", URL: srv.URL + "/base", Size: int64(len("base-bytes"))},
	}

	results, err := (&Executor{}).Execute(files, t.TempDir())
	require.NoError(t, err)
	assert.True(t, results[0].Success(), "sizes are not checked by default")

	results, err = (&Executor{VerifySize: true}).Execute(files, t.TempDir())
	require.NoError(t, err)
	var sme *SizeMismatchError
	require.True(t, errors.As(results[0].Err, &sme))
	assert.Equal(t, int64(1000), sme.Expected)
	assert.Equal(t, int64(len("base-bytes")), sme.Actual)
	assert.True(t, results[1].Success())
}

func TestExecuteProgressOnNonTerminal(t *testing.T) {
	srv := fileServer(t)
	dir := t.TempDir()
	var out bytes.Buffer

	_, err := (&Executor{Out: &out, Progress: true}).Execute([]store.File{{URL: srv.URL + "/base"}}, dir)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "\r")
	assert.Contains(t, out.String(), "Saved to "+filepath.Join(dir, "base.apk")+" (10 B)")
}

func TestExecuteLock(t *testing.T) {
	srv := fileServer(t)
	dir := t.TempDir()
	lockDir := t.TempDir()

	results, err := (&Executor{LockDir: lockDir}).Execute([]store.File{{URL: srv.URL + "/base"}}, dir)
	require.NoError(t, err)
	assert.True(t, results[0].Success())

	locks, err := filepath.Glob(filepath.Join(lockDir, "*.lock"))
	require.NoError(t, err)
	require.Len(t, locks, 1)

	held := flock.New(locks[0])
	require.NoError(t, held.Lock())
	defer held.Unlock()

	old := lockTimeout
	lockTimeout = 50 * time.Millisecond
	defer func() { lockTimeout = old }()

	results, err = (&Executor{LockDir: lockDir}).Execute([]store.File{{URL: srv.URL + "/base"}}, dir)
	assert.ErrorContains(t, err, "another download into")
	assert.Nil(t, results)
}

func TestProgressDraw(t *testing.T) {
	var out bytes.Buffer
	p := newProgress(&out, "base.apk", 2048)
	p.live = true

	_, err := p.Write(make([]byte, 1024))
	require.NoError(t, err)
	p.done()

	assert.Contains(t, out.String(), "\r  base.apk: 1.0 kB / 2.0 kB (50.0%)")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}
