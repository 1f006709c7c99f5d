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

package main // import "github.com/playfetch/playfetch/cmd/playfetch"

import (
	"log/slog"
	"os"

	"github.com/playfetch/playfetch/pkg/cmd"
)

func main() {
	cmd, err := cmd.NewRootCmd(os.Stdout, os.Args[1:])
	if err != nil {
		slog.Error("failed to create root command", "error", err)
		os.Exit(1)
	}

	// cobra prints "Error: ..." to stderr
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
