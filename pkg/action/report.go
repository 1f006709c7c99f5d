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

package action

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/playfetch/playfetch/pkg/downloader"
)

// Report summarizes a download run.
type Report struct {
	RunID       string       `json:"runID"`
	PackageID   string       `json:"packageID"`
	VersionCode int64        `json:"versionCode"`
	Pinned      bool         `json:"pinned"`
	OutputDir   string       `json:"outputDir"`
	State       State        `json:"state"`
	Files       []FileReport `json:"files"`
}

// FileReport is the outcome of one file.
type FileReport struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	URL   string `json:"url"`
	Bytes int64  `json:"bytes"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`

	err error
}

func (r *Report) setResults(results []downloader.Result) {
	r.Files = make([]FileReport, 0, len(results))
	for _, res := range results {
		fr := FileReport{
			Name:  res.Name,
			Path:  res.Path,
			URL:   res.File.URL,
			Bytes: res.Bytes,
			OK:    res.Success(),
			err:   res.Err,
		}
		if res.Err != nil {
			fr.Error = res.Err.Error()
		}
		r.Files = append(r.Files, fr)
	}
}

// Succeeded is the number of files saved.
func (r *Report) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.OK {
			n++
		}
	}
	return n
}

// Failed is the number of files that could not be saved.
func (r *Report) Failed() int {
	return len(r.Files) - r.Succeeded()
}

// Err aggregates the per-file failures. It is nil when every file was saved.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Files {
		if f.OK {
			continue
		}
		err := f.err
		if err == nil {
			err = fmt.Errorf("%s", f.Error)
		}
		result = multierror.Append(result, fmt.Errorf("%s: %w", f.Name, err))
	}
	return result.ErrorOrNil()
}
