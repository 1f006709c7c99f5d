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
Package device loads the device profiles a session presents to the store.

A profile is a flat set of key=value properties describing an Android build
(model, SDK level, ABIs, store client version). Profiles are referenced either
as "included:<name>" for one of the built-in profiles, or by the path of a
properties file on disk.
*/
package device

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-ini/ini"
	"github.com/mitchellh/copystructure"
	"github.com/pkg/errors"
)

// IncludedPrefix marks a reference to a built-in profile.
const IncludedPrefix = "included:"

// DefaultRef is the profile used when none is configured.
const DefaultRef = IncludedPrefix + "px_9a.properties"

// RequiredKeys must be present and non-blank in every profile.
var RequiredKeys = []string{
	"Build.DEVICE",
	"Build.MODEL",
	"Build.VERSION.SDK_INT",
	"Vending.version",
}

//go:embed profiles/*.properties
var builtin embed.FS

// Profile is an immutable set of device properties.
type Profile struct {
	name  string
	props map[string]string
	keys  []string
}

// Name returns the reference the profile was loaded from.
func (p *Profile) Name() string { return p.name }

// Get returns the value for key, or "" when it is not set.
func (p *Profile) Get(key string) string { return p.props[key] }

// Keys returns the property names in sorted order.
func (p *Profile) Keys() []string {
	return append([]string(nil), p.keys...)
}

// Properties returns a copy of the property map. Mutating it does not affect
// the profile.
func (p *Profile) Properties() map[string]string {
	c, err := copystructure.Copy(p.props)
	if err != nil {
		// maps of strings always copy
		panic(err)
	}
	return c.(map[string]string)
}

// DisplayName is the human readable name of the device.
func (p *Profile) DisplayName() string {
	if v := p.Get("UserReadableName"); v != "" {
		return v
	}
	return strings.TrimSpace(p.Get("Build.MANUFACTURER") + " " + p.Get("Build.MODEL"))
}

// UserAgent returns the store client agent string for this device.
func (p *Profile) UserAgent() string {
	return fmt.Sprintf(
		"Android-Finsky/%s (api=3,versionCode=%s,sdk=%s,device=%s,hardware=%s,product=%s,platformVersionRelease=%s,model=%s,buildId=%s,isWideScreen=0,supportedAbis=%s)",
		p.Get("Vending.versionString"),
		p.Get("Vending.version"),
		p.Get("Build.VERSION.SDK_INT"),
		p.Get("Build.DEVICE"),
		p.Get("Build.HARDWARE"),
		p.Get("Build.PRODUCT"),
		p.Get("Build.VERSION.RELEASE"),
		p.Get("Build.MODEL"),
		p.Get("Build.ID"),
		strings.ReplaceAll(p.Get("Platforms"), ",", ";"),
	)
}

// Load resolves a profile reference.
func Load(ref string) (*Profile, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("empty device profile reference")
	}
	if name, ok := strings.CutPrefix(ref, IncludedPrefix); ok {
		return LoadIncluded(name)
	}
	return LoadFile(ref)
}

// LoadIncluded loads one of the built-in profiles by file name.
func LoadIncluded(name string) (*Profile, error) {
	data, err := builtin.ReadFile(path.Join("profiles", name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Errorf("no built-in device profile %q (available: %s)", name, strings.Join(Included(), ", "))
		}
		return nil, err
	}
	return Parse(IncludedPrefix+name, data)
}

// LoadFile loads a profile from a properties file.
func LoadFile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read device profile %s", filename)
	}
	return Parse(filename, data)
}

// Parse reads key=value properties. Blank lines and lines starting with '#'
// are ignored.
func Parse(name string, data []byte) (*Profile, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:      "=",
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid device profile %s", name)
	}

	sec := f.Section(ini.DefaultSection)
	props := sec.KeysHash()
	if len(props) == 0 {
		return nil, errors.Errorf("device profile %s is empty", name)
	}

	var missing []string
	for _, k := range RequiredKeys {
		if strings.TrimSpace(props[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("device profile %s is missing %s", name, strings.Join(missing, ", "))
	}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &Profile{name: name, props: props, keys: keys}, nil
}

// Included lists the built-in profile names.
func Included() []string {
	entries, err := fs.ReadDir(builtin, "profiles")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
