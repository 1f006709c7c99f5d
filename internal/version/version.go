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

// Package version reports the build of playfetch and the agent it presents
// to servers that do not need to believe it is a phone.
package version // import "github.com/playfetch/playfetch/internal/version"

import (
	"flag"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/playfetch/playfetch/internal/version.version=..."
// on release builds. Commit and tree state fall back to the VCS stamp the Go
// toolchain embeds.
var (
	version      = "v0.3"
	metadata     = ""
	gitCommit    = ""
	gitTreeState = ""
)

// BuildInfo describes the compile time information.
type BuildInfo struct {
	Version      string `json:"version,omitempty"`
	GitCommit    string `json:"git_commit,omitempty"`
	GitTreeState string `json:"git_tree_state,omitempty"`
	GoVersion    string `json:"go_version,omitempty"`
}

// GetVersion returns the semver string of the version
func GetVersion() string {
	if metadata == "" {
		return version
	}
	return version + "+" + metadata
}

// GetUserAgent returns the agent playfetch sends to servers that accept any
// client, such as a self-hosted dispenser or a download CDN.
func GetUserAgent() string {
	return "playfetch/" + strings.TrimPrefix(GetVersion(), "v")
}

// Get returns build info. Under go test the Go version and VCS stamp are left
// out so command output stays the same across machines.
func Get() BuildInfo {
	v := BuildInfo{
		Version:      GetVersion(),
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		GoVersion:    runtime.Version(),
	}
	if flag.Lookup("test.v") != nil {
		v.GoVersion = ""
		return v
	}
	if v.GitCommit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			v.GitCommit, v.GitTreeState = vcsStamp(info.Settings)
		}
	}
	return v
}

func vcsStamp(settings []debug.BuildSetting) (commit, treeState string) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.modified":
			treeState = "clean"
			if s.Value == "true" {
				treeState = "dirty"
			}
		}
	}
	return commit, treeState
}
