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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const progressInterval = 200 * time.Millisecond

// progress redraws a single status line for the file being written. It only
// draws when out is a terminal; otherwise it just counts.
type progress struct {
	out     io.Writer
	name    string
	total   int64
	written int64
	live    bool
	last    time.Time
}

func newProgress(out io.Writer, name string, total int64) *progress {
	return &progress{
		out:   out,
		name:  name,
		total: total,
		live:  isTerminal(out),
	}
}

func (p *progress) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.live && time.Since(p.last) >= progressInterval {
		p.last = time.Now()
		p.draw()
	}
	return len(b), nil
}

func (p *progress) draw() {
	if p.total > 0 {
		pct := float64(p.written) / float64(p.total) * 100
		fmt.Fprintf(p.out, "\r  %s: %s / %s (%.1f%%)    ", p.name, humanize.Bytes(uint64(p.written)), humanize.Bytes(uint64(p.total)), pct)
		return
	}
	fmt.Fprintf(p.out, "\r  %s: %s    ", p.name, humanize.Bytes(uint64(p.written)))
}

func (p *progress) done() {
	if !p.live {
		return
	}
	p.draw()
	fmt.Fprintln(p.out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
