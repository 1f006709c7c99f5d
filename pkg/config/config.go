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
Package config loads the optional playfetch configuration file.

The file supplies defaults for the global command line flags. It never holds
credentials: an email and token are only accepted from flags or the
environment, and acquired credentials are not written anywhere.

	dispenser: https://dispenser.example.com/api/auth
	locale: de-DE
	device: included:px_7a.properties
	storeURL: https://store.example.com/fdfe
	timeout: 2m
*/
package config

import (
	"os"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"
)

// File represents the playfetch configuration file.
type File struct {
	// Dispenser is the credential dispenser queried when no explicit
	// credentials are given.
	Dispenser string `json:"dispenser,omitempty"`
	// Locale is a BCP 47 language tag.
	Locale string `json:"locale,omitempty"`
	// Device is a device profile reference.
	Device string `json:"device,omitempty"`
	// StoreURL is the base URL of the storefront API.
	StoreURL string `json:"storeURL,omitempty"`
	// Timeout bounds the wait for response headers. Empty means no timeout.
	Timeout string `json:"timeout,omitempty"`
}

// LoadFile reads and parses the configuration file at path.
//
// A missing file is reported with an error that satisfies
// errors.Is(err, fs.ErrNotExist) so callers can treat it as optional.
func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't load config file (%s)", path)
	}

	f := new(File)
	if err := yaml.UnmarshalStrict(b, f); err != nil {
		return nil, errors.Wrapf(err, "couldn't parse config file (%s)", path)
	}
	return f, nil
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (f *File) TimeoutDuration() (time.Duration, error) {
	if f.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(f.Timeout)
	if err != nil {
		return 0, errors.Wrap(err, "invalid timeout")
	}
	if d < 0 {
		return 0, errors.Errorf("invalid timeout %q: must not be negative", f.Timeout)
	}
	return d, nil
}

// Validate reports every problem in the file at once.
func (f *File) Validate() error {
	var result *multierror.Error

	if f.Dispenser != "" && !govalidator.IsRequestURL(f.Dispenser) {
		result = multierror.Append(result, errors.Errorf("dispenser %q is not a valid URL", f.Dispenser))
	}
	if f.StoreURL != "" && !govalidator.IsRequestURL(f.StoreURL) {
		result = multierror.Append(result, errors.Errorf("storeURL %q is not a valid URL", f.StoreURL))
	}
	if f.Locale != "" {
		if _, err := language.Parse(f.Locale); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "locale %q", f.Locale))
		}
	}
	if _, err := f.TimeoutDuration(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}
