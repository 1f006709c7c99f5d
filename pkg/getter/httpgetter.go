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

package getter

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// HTTPGetter is the default HTTP(/S) backend handler
type HTTPGetter struct {
	opts getterOptions

	mu sync.Mutex
	// one pooled transport per header timeout, reused across files
	transports map[time.Duration]*http.Transport
}

// Get performs a Get from repo.Getter and returns the body.
func (g *HTTPGetter) Get(href string, options ...Option) (*bytes.Buffer, error) {
	resp, err := g.Open(href, options...)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	buf := bytes.NewBuffer(nil)
	_, err = io.Copy(buf, resp.Body)
	return buf, err
}

// Open starts a GET and returns the unread body of a 2xx response. Any other
// status is a *StatusError.
func (g *HTTPGetter) Open(href string, options ...Option) (*Response, error) {
	// Create a local copy of options to avoid data races when Open is called concurrently
	opts := g.opts
	for _, opt := range options {
		opt(&opts)
	}
	return g.open(href, opts)
}

func (g *HTTPGetter) open(href string, opts getterOptions) (*Response, error) {
	req, err := http.NewRequest(http.MethodGet, href, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid URL %q", href)
	}
	if opts.userAgent != "" {
		req.Header.Set("User-Agent", opts.userAgent)
	}

	resp, err := g.httpClient(opts.timeout).Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &StatusError{URL: href, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return &Response{
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
		StatusCode:    resp.StatusCode,
	}, nil
}

// NewHTTPGetter constructs a valid http/https client as a Getter
func NewHTTPGetter(options ...Option) (Getter, error) {
	var client HTTPGetter

	for _, opt := range options {
		opt(&client.opts)
	}

	return &client, nil
}

func (g *HTTPGetter) httpClient(timeout time.Duration) *http.Client {
	g.mu.Lock()
	defer g.mu.Unlock()

	tr, ok := g.transports[timeout]
	if !ok {
		tr = http.DefaultTransport.(*http.Transport).Clone()
		tr.DisableCompression = true
		tr.ResponseHeaderTimeout = timeout
		if g.transports == nil {
			g.transports = map[time.Duration]*http.Transport{}
		}
		g.transports[timeout] = tr
	}
	return &http.Client{Transport: tr}
}
