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
	"io"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/playfetch/playfetch/pkg/credential"
	"github.com/playfetch/playfetch/pkg/downloader"
	"github.com/playfetch/playfetch/pkg/getter"
	"github.com/playfetch/playfetch/pkg/playpath"
	"github.com/playfetch/playfetch/pkg/resolve"
	"github.com/playfetch/playfetch/pkg/session"
	"github.com/playfetch/playfetch/pkg/store"
)

// State is a stage of a download run.
type State int

const (
	StateIdle State = iota
	StateCredentialAcquired
	StateSessionBuilt
	StateVersionResolved
	StateEntitlementResolved
	StateDownloading
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                "idle",
	StateCredentialAcquired:  "credential-acquired",
	StateSessionBuilt:        "session-built",
	StateVersionResolved:     "version-resolved",
	StateEntitlementResolved: "entitlement-resolved",
	StateDownloading:         "downloading",
	StateDone:                "done",
	StateFailed:              "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Download is the action for fetching the files of an application.
//
// It provides the implementation of 'playfetch download'.
type Download struct {
	cfg *Configuration

	// OutputDir is the destination directory. It is created when missing.
	OutputDir string
	// VersionCode pins the version. Nil means the latest.
	VersionCode *int64
	// Include keeps only files whose saved name matches one of these glob
	// patterns. Empty keeps everything.
	Include    []string
	Retries    int
	VerifySize bool
	Progress   bool
	// Out receives the progress lines.
	Out io.Writer
	// OnResult is called as each file completes.
	OnResult func(downloader.Result)

	state State
}

// NewDownload creates a new Download object with the given configuration.
func NewDownload(cfg *Configuration) *Download {
	return &Download{
		cfg:       cfg,
		OutputDir: ".",
		Out:       io.Discard,
	}
}

// State returns the stage the last run reached.
func (d *Download) State() State { return d.state }

// Run executes the download pipeline for packageID. Per-file failures do not
// fail the run; they are recorded in the report. Any earlier failure ends the
// run with StateFailed and an error.
func (d *Download) Run(packageID string) (*Report, error) {
	rep := &Report{
		RunID:     uuid.NewString(),
		PackageID: packageID,
		OutputDir: d.OutputDir,
	}
	log := d.cfg.Logger().With("run", rep.RunID, "package", packageID)

	d.state = StateIdle
	fail := func(err error) (*Report, error) {
		log.Debug("run failed", "state", d.state, "error", err)
		d.state = StateFailed
		rep.State = d.state
		return rep, err
	}
	enter := func(s State, args ...any) {
		log.Debug("state transition", append([]any{"from", d.state, "to", s}, args...)...)
		d.state = s
		rep.State = s
	}

	if strings.TrimSpace(packageID) == "" {
		return fail(errMissingPackage)
	}
	include, err := compileGlobs(d.Include)
	if err != nil {
		return fail(err)
	}
	tgt, err := d.cfg.preflight()
	if err != nil {
		return fail(err)
	}
	if err := downloader.PrepareDestination(d.OutputDir, d.Out); err != nil {
		return fail(err)
	}

	cred, err := credential.Acquire(d.cfg.credentialSources()...)
	if err != nil {
		return fail(err)
	}
	enter(StateCredentialAcquired, "email", cred.Email)

	sc, err := session.New(d.cfg.Builder, cred, tgt.device, tgt.locale)
	if err != nil {
		return fail(err)
	}
	enter(StateSessionBuilt, "device", tgt.device.Name(), "locale", tgt.locale.String())

	st, err := d.cfg.connect(tgt.baseURL, sc.Handle)
	if err != nil {
		return fail(err)
	}

	version, err := (&resolve.VersionResolver{Catalog: st}).Resolve(packageID, d.VersionCode)
	if err != nil {
		return fail(rejected(err, cred))
	}
	rep.VersionCode = version.VersionCode
	rep.Pinned = version.Pinned()
	enter(StateVersionResolved, "versionCode", version.VersionCode, "pinned", version.Pinned())

	files, err := (&resolve.EntitlementResolver{Entitlements: st}).ResolveFiles(version, store.OfferFree)
	if err != nil {
		return fail(rejected(err, cred))
	}
	files = filterFiles(files, include, log)
	enter(StateEntitlementResolved, "files", len(files))

	g, err := getter.NewHTTPGetter(getter.WithTimeout(d.cfg.Settings.Timeout))
	if err != nil {
		return fail(err)
	}
	exec := &downloader.Executor{
		Getter:     g,
		Out:        d.Out,
		OnResult:   d.OnResult,
		Retries:    d.Retries,
		VerifySize: d.VerifySize,
		Progress:   d.Progress,
		LockDir:    playpath.CachePath("locks"),
	}

	enter(StateDownloading)
	results, err := exec.Execute(files, d.OutputDir)
	if err != nil {
		return fail(err)
	}
	rep.setResults(results)
	if err := rep.Err(); err != nil {
		log.Debug("some files were not saved", "error", err)
	}
	enter(StateDone, "succeeded", rep.Succeeded(), "failed", rep.Failed())
	return rep, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid include pattern %q", p)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func filterFiles(files []store.File, include []glob.Glob, log *slog.Logger) []store.File {
	if len(include) == 0 {
		return files
	}
	kept := make([]store.File, 0, len(files))
	for _, f := range files {
		name := downloader.DisplayName(f)
		matched := false
		for _, g := range include {
			if g.Match(name) {
				matched = true
				break
			}
		}
		if matched {
			kept = append(kept, f)
			continue
		}
		log.Debug("skipping file", "name", name)
	}
	return kept
}
