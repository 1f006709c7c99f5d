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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/playfetch/playfetch/pkg/getter"
	"github.com/playfetch/playfetch/pkg/store"
)

// DefaultName is used for descriptors without a name.
const DefaultName = "base.apk"

const (
	defaultRetryBackoff = time.Second
	maxRetryBackoff     = 30 * time.Second
)

// lockTimeout bounds the wait for a destination held by another run.
var lockTimeout = 30 * time.Second

// Result is the outcome of one descriptor.
type Result struct {
	File store.File
	// Name is the display name the file was saved under.
	Name string
	// Path is the destination path. It is empty when the name could not be
	// resolved inside the destination.
	Path  string
	Bytes int64
	// StatusCode is the last HTTP status seen, zero when no response arrived.
	StatusCode int
	// Err is nil on success.
	Err error
}

// Success reports whether the file was saved.
func (r Result) Success() bool { return r.Err == nil }

// SizeMismatchError means fewer or more bytes arrived than advertised.
type SizeMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: expected %d bytes, got %d", e.Expected, e.Actual)
}

// Executor downloads file descriptors. The zero value downloads with no
// retries, no size verification and no progress display.
type Executor struct {
	// Getter fetches file URLs. Nil means a plain HTTP getter that sends no
	// custom headers.
	Getter getter.Getter
	// Out receives one line per started and finished file.
	Out io.Writer
	// OnResult is called as each file completes.
	OnResult func(Result)

	// Retries is how many extra attempts a file gets after a transport
	// error or a 5xx response.
	Retries int
	// RetryBackoff is the initial delay between attempts. Zero means one second.
	RetryBackoff time.Duration
	// VerifySize fails a file whose length differs from the advertised size.
	VerifySize bool
	// Progress enables byte progress on terminals.
	Progress bool
	// LockDir, when set, holds the lock files that stop two runs from writing
	// into the same destination at once.
	LockDir string
}

// Execute downloads files into dir in order and returns one Result per file.
// An error is returned only when the destination lock cannot be taken, in
// which case nothing is downloaded.
func (e *Executor) Execute(files []store.File, dir string) ([]Result, error) {
	if e.LockDir != "" {
		unlock, err := e.lock(dir)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	g := e.Getter
	if g == nil {
		var err error
		if g, err = getter.NewHTTPGetter(); err != nil {
			return nil, err
		}
	}

	results := make([]Result, 0, len(files))
	for _, f := range files {
		res := e.download(g, f, dir)
		if res.Err != nil {
			e.printf("Failed to download %s: %v\n", res.Name, res.Err)
		} else if e.Progress {
			e.printf("Saved to %s (%s)\n", res.Path, humanize.Bytes(uint64(res.Bytes)))
		} else {
			e.printf("Saved to %s\n", res.Path)
		}
		if e.OnResult != nil {
			e.OnResult(res)
		}
		results = append(results, res)
	}
	return results, nil
}

func (e *Executor) download(g getter.Getter, f store.File, dir string) Result {
	res := Result{File: f, Name: DisplayName(f)}
	e.printf("Downloading %s...\n", res.Name)

	path, err := securejoin.SecureJoin(dir, res.Name)
	if err != nil {
		res.Err = errors.Wrapf(err, "invalid file name %q", res.Name)
		return res
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	res.Path = path

	res.Err = backoff.Retry(func() error {
		var err error
		res.Bytes, res.StatusCode, err = e.fetch(g, f, res.Name, path)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, e.retryPolicy())
	return res
}

// fetch performs one attempt. The body and the file are closed on every path.
func (e *Executor) fetch(g getter.Getter, f store.File, name, path string) (int64, int, error) {
	resp, err := g.Open(f.URL)
	if err != nil {
		var se *getter.StatusError
		if errors.As(err, &se) {
			return 0, se.StatusCode, &statusFailure{code: se.StatusCode}
		}
		return 0, 0, err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, resp.StatusCode, err
	}
	out, err := os.Create(path)
	if err != nil {
		return 0, resp.StatusCode, err
	}

	var w io.Writer = out
	var p *progress
	if e.Progress {
		p = newProgress(e.Out, name, expectedSize(f, resp))
		w = io.MultiWriter(out, p)
	}

	n, copyErr := io.Copy(w, resp.Body)
	closeErr := out.Close()
	if p != nil {
		p.done()
	}

	switch {
	case copyErr != nil:
		return n, resp.StatusCode, copyErr
	case closeErr != nil:
		return n, resp.StatusCode, closeErr
	}

	if e.VerifySize {
		if want := expectedSize(f, resp); want >= 0 && want != n {
			return n, resp.StatusCode, &SizeMismatchError{Expected: want, Actual: n}
		}
	}
	return n, resp.StatusCode, nil
}

// retryPolicy doubles the delay after each attempt, up to maxRetryBackoff,
// randomized by half in either direction.
func (e *Executor) retryPolicy() backoff.BackOff {
	if e.Retries <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.RetryBackoff
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultRetryBackoff
	}
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxInterval = maxRetryBackoff
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(e.Retries))
}

func (e *Executor) lock(dir string) (func(), error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.LockDir, 0755); err != nil {
		return nil, errors.Wrap(err, "could not create lock directory")
	}
	sum := sha256.Sum256([]byte(abs))
	fileLock := flock.New(filepath.Join(e.LockDir, hex.EncodeToString(sum[:8])+".lock"))

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	locked, err := fileLock.TryLockContext(ctx, time.Second)
	if err != nil {
		return nil, errors.Wrapf(err, "another download into %s is in progress", dir)
	}
	if !locked {
		return nil, errors.Errorf("another download into %s is in progress", dir)
	}
	return func() { fileLock.Unlock() }, nil
}

func (e *Executor) printf(format string, a ...any) {
	if e.Out != nil {
		fmt.Fprintf(e.Out, format, a...)
	}
}

// DisplayName is the file name a descriptor is saved under.
func DisplayName(f store.File) string {
	if strings.TrimSpace(f.Name) == "" {
		return DefaultName
	}
	return f.Name
}

// expectedSize prefers the descriptor's advertised size over Content-Length.
// It is -1 when neither is known.
func expectedSize(f store.File, resp *getter.Response) int64 {
	if f.Size > 0 {
		return f.Size
	}
	return resp.ContentLength
}

type statusFailure struct {
	code int
}

func (s *statusFailure) Error() string {
	return fmt.Sprintf("non-success status %d", s.code)
}

func retryable(err error) bool {
	var sf *statusFailure
	if errors.As(err, &sf) {
		return sf.code >= 500
	}
	var sm *SizeMismatchError
	if errors.As(err, &sm) {
		return true
	}
	var pe *os.PathError
	return !errors.As(err, &pe)
}
