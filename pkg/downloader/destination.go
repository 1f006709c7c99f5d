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

/*
Package downloader fetches the files of an entitlement into a destination
directory.

Files are transferred one at a time, in order. A failure affects only the file
it happened on: every descriptor yields exactly one Result.
*/
package downloader

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
)

// DestinationPathError means the destination exists but is not a directory.
type DestinationPathError struct {
	Path string
}

func (e *DestinationPathError) Error() string {
	return fmt.Sprintf("%s already exists and is not a directory", e.Path)
}

// PrepareDestination makes sure dir exists and is a directory, creating it
// when missing. The creation is announced on out.
func PrepareDestination(dir string, out io.Writer) error {
	if dir == "" {
		return errors.New("destination directory is required")
	}

	fi, err := os.Stat(dir)
	switch {
	case err == nil:
		if !fi.IsDir() {
			return &DestinationPathError{Path: dir}
		}
		return nil
	case !os.IsNotExist(err):
		return errors.Wrapf(err, "could not inspect %s", dir)
	}

	if out != nil {
		fmt.Fprintf(out, "Creating directory %s to save downloaded app into.\n", dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "could not create %s", dir)
	}
	return nil
}
