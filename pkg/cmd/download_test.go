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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playfetch/playfetch/pkg/cli"
)

func TestDownloadCmd(t *testing.T) {
	isolate(t)
	srv := newStorefront(t)
	dir := filepath.Join(t.TempDir(), "example")

	_, out, err := executeActionCommand(t, fmt.Sprintf("download com.example.app %s %s", dir, srv.flags()))
	require.NoError(t, err, out)

	for _, s := range []string{
		fmt.Sprintf("Creating directory %s to save downloaded app into.", dir),
		"Downloading base.apk...",
		"Saved to " + filepath.Join(dir, "base.apk"),
		"Downloading split_config.xxhdpi.apk...",
		"Failed to download split_broken.apk: non-success status 404",
		"com.example.app version 31: 2 of 3 files saved to " + dir,
		"FILE",
		"failed: non-success status 404",
	} {
		assert.Contains(t, out, s)
	}
	assert.Regexp(t, `Download complete.\n$`, out)

	b, err := os.ReadFile(filepath.Join(dir, "base.apk"))
	require.NoError(t, err)
	assert.Equal(t, "base", string(b))
	assert.FileExists(t, filepath.Join(dir, "split_config.xxhdpi.apk"))
	assert.NoFileExists(t, filepath.Join(dir, "split_broken.apk"))

	assert.Equal(t, 1, srv.count("/auth"))
	assert.Equal(t, 1, srv.count("/api/details"))
}

func TestDownloadCmdPinnedVersion(t *testing.T) {
	isolate(t)
	srv := newStorefront(t)

	_, out, err := executeActionCommand(t, fmt.Sprintf("download com.example.app %s 7 %s", t.TempDir(), srv.flags()))
	require.NoError(t, err, out)
	assert.Contains(t, out, "com.example.app version 7:")
	assert.Equal(t, 0, srv.count("/api/details"))
}

func TestDownloadCmdExplicitCredentials(t *testing.T) {
	isolate(t)
	srv := newStorefront(t)
	t.Setenv("PLAYFETCH_EMAIL", "me@example.com")
	t.Setenv("PLAYFETCH_TOKEN", "secret")
	settings = cli.New()

	_, out, err := executeActionCommand(t, fmt.Sprintf("download com.example.app %s %s", t.TempDir(), srv.flags()))
	require.NoError(t, err, out)
	assert.Equal(t, 0, srv.count("/auth"))
}

func TestDownloadCmdConfigFile(t *testing.T) {
	isolate(t)
	srv := newStorefront(t)

	cfgFile := filepath.Join(os.Getenv("PLAYFETCH_CONFIG_HOME"), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(fmt.Sprintf("dispenser: %s/auth\nstoreURL: %s/api\ndevice: included:px_7a.properties\n", srv.URL, srv.URL)), 0644))
	settings = cli.New()

	_, out, err := executeActionCommand(t, "download com.example.app "+t.TempDir())
	require.NoError(t, err, out)
	assert.Equal(t, 1, srv.count("/auth"))
	assert.Equal(t, "included:px_7a.properties", settings.Device)
}

func TestDownloadCmdJSON(t *testing.T) {
	isolate(t)
	srv := newStorefront(t)

	_, out, err := executeActionCommand(t, fmt.Sprintf("download com.example.app %s %s -o json --include 'split_*'", t.TempDir(), srv.flags()))
	require.NoError(t, err, out)
	assert.Contains(t, out, `"packageID":"com.example.app"`)
	assert.Contains(t, out, `"state":"done"`)
	assert.Contains(t, out, `"name":"split_broken.apk"`)
	assert.NotContains(t, out, `"name":"base.apk"`)
	assert.NotContains(t, out, "Download complete.")
}

func TestDownloadCmdErrors(t *testing.T) {
	isolate(t)
	srv := newStorefront(t)

	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	tests := []cmdTestCase{{
		name:      "no package",
		cmd:       "download",
		wantError: true,
		contains:  []string{`"playfetch download" requires at least 1 argument`},
	}, {
		name:      "too many arguments",
		cmd:       "download a b 1 extra",
		wantError: true,
		contains:  []string{"accepts at most 3 arguments"},
	}, {
		name:      "invalid version code",
		cmd:       "download com.example.app . latest " + srv.flags(),
		wantError: true,
		contains:  []string{`invalid version code "latest"`},
	}, {
		name:      "destination is a file",
		cmd:       fmt.Sprintf("download com.example.app %s %s", file, srv.flags()),
		wantError: true,
		contains:  []string{"already exists and is not a directory"},
	}, {
		name:      "unknown package",
		cmd:       fmt.Sprintf("download com.example.nope %s %s", t.TempDir(), srv.flags()),
		wantError: true,
		contains:  []string{`package "com.example.nope" not found`},
	}, {
		name:      "no store url",
		cmd:       fmt.Sprintf("download com.example.app %s --dispenser %s/auth", t.TempDir(), srv.URL),
		wantError: true,
		contains:  []string{"no store URL configured"},
	}, {
		name:      "missing explicit config",
		cmd:       "download com.example.app --config " + filepath.Join(t.TempDir(), "nope.yaml"),
		wantError: true,
		contains:  []string{"couldn't load config file"},
	}, {
		name:      "bad output format",
		cmd:       "download com.example.app -o xml",
		wantError: true,
		contains:  []string{"invalid format type"},
	}}
	runTestCmd(t, tests)

	assert.Equal(t, 0, srv.count("/cdn/base"))
}
