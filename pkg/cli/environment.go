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
Package cli describes the operating environment for the playfetch CLI.

Settings are resolved in order of precedence: command line flags, PLAYFETCH_*
environment variables, the configuration file, and finally built-in defaults.
*/
package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/playfetch/playfetch/pkg/config"
	"github.com/playfetch/playfetch/pkg/device"
	"github.com/playfetch/playfetch/pkg/playpath"
)

// EnvSettings describes all of the environment settings.
type EnvSettings struct {
	// Debug indicates whether or not playfetch is running in Debug mode.
	Debug bool
	// ConfigFile is the path to the configuration file.
	ConfigFile string
	// Dispenser is the URL of a credential dispenser.
	Dispenser string
	// Email is an explicitly supplied account email.
	Email string
	// Token is an explicitly supplied AUTH token.
	Token string
	// Locale is the BCP 47 tag presented to the store.
	Locale string
	// Device is a device profile reference.
	Device string
	// StoreURL is the base URL of the storefront API.
	StoreURL string
	// Timeout bounds the wait for each server's response headers. Bodies
	// are read without a bound. Zero disables the bound.
	Timeout time.Duration
}

// New returns the settings read from the PLAYFETCH_* environment variables.
// Flags and the configuration file are applied later.
func New() *EnvSettings {
	env := &EnvSettings{
		ConfigFile: envOr("PLAYFETCH_CONFIG", playpath.ConfigPath("config.yaml")),
		Dispenser:  os.Getenv("PLAYFETCH_DISPENSER"),
		Email:      os.Getenv("PLAYFETCH_EMAIL"),
		Token:      os.Getenv("PLAYFETCH_TOKEN"),
		Locale:     os.Getenv("PLAYFETCH_LOCALE"),
		Device:     os.Getenv("PLAYFETCH_DEVICE"),
		StoreURL:   os.Getenv("PLAYFETCH_STORE_URL"),
	}
	env.Debug, _ = strconv.ParseBool(os.Getenv("PLAYFETCH_DEBUG"))
	env.Timeout, _ = time.ParseDuration(os.Getenv("PLAYFETCH_TIMEOUT"))
	return env
}

// AddFlags binds flags to the given flagset.
func (s *EnvSettings) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&s.Debug, "debug", s.Debug, "enable verbose output")
	fs.StringVar(&s.ConfigFile, "config", s.ConfigFile, "path to the configuration file")
	fs.StringVar(&s.Dispenser, "dispenser", s.Dispenser, "URL of a credential dispenser, used when --email and --token are not both set")
	fs.StringVar(&s.Email, "email", s.Email, "account email. Explicit credentials are preferred over a dispenser")
	fs.StringVar(&s.Token, "token", s.Token, "account AUTH token. Explicit credentials are preferred over a dispenser")
	fs.StringVar(&s.Locale, "locale", s.Locale, "locale presented to the store (default: the host locale)")
	fs.StringVar(&s.Device, "device", s.Device, fmt.Sprintf("device profile: 'included:<name>' or a path to a properties file (default %q)", device.DefaultRef))
	fs.StringVar(&s.StoreURL, "store-url", s.StoreURL, "base URL of the storefront API")
	fs.DurationVar(&s.Timeout, "timeout", s.Timeout, "time to wait for a server to start answering a request, 0 waits forever. File transfers are not cut off once started")
}

// ApplyConfig fills every setting still unset from the configuration file.
func (s *EnvSettings) ApplyConfig(f *config.File) error {
	if f == nil {
		return nil
	}
	if err := f.Validate(); err != nil {
		return err
	}
	if s.Dispenser == "" {
		s.Dispenser = f.Dispenser
	}
	if s.Locale == "" {
		s.Locale = f.Locale
	}
	if s.Device == "" {
		s.Device = f.Device
	}
	if s.StoreURL == "" {
		s.StoreURL = f.StoreURL
	}
	if s.Timeout == 0 {
		s.Timeout, _ = f.TimeoutDuration()
	}
	return nil
}

// ApplyDefaults fills the settings that have built-in defaults.
func (s *EnvSettings) ApplyDefaults() {
	if s.Locale == "" {
		s.Locale = HostLocale()
	}
	if s.Device == "" {
		s.Device = device.DefaultRef
	}
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}

// EnvVars returns the effective settings as environment variables. The
// token is never included.
func (s *EnvSettings) EnvVars() map[string]string {
	envvars := map[string]string{
		"PLAYFETCH_CACHE_HOME":  playpath.CachePath(""),
		"PLAYFETCH_CONFIG_HOME": playpath.ConfigPath(""),
		"PLAYFETCH_CONFIG":      s.ConfigFile,
		"PLAYFETCH_DEBUG":       fmt.Sprint(s.Debug),
		"PLAYFETCH_DISPENSER":   s.Dispenser,
		"PLAYFETCH_EMAIL":       s.Email,
		"PLAYFETCH_LOCALE":      s.Locale,
		"PLAYFETCH_DEVICE":      s.Device,
		"PLAYFETCH_STORE_URL":   s.StoreURL,
		"PLAYFETCH_TIMEOUT":     s.Timeout.String(),
	}
	return envvars
}
