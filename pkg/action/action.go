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
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/playfetch/playfetch/internal/logging"
	"github.com/playfetch/playfetch/pkg/cli"
	"github.com/playfetch/playfetch/pkg/credential"
	"github.com/playfetch/playfetch/pkg/device"
	"github.com/playfetch/playfetch/pkg/getter"
	"github.com/playfetch/playfetch/pkg/session"
	"github.com/playfetch/playfetch/pkg/store"
)

var (
	// errMissingPackage indicates that a package id was not provided.
	errMissingPackage = errors.New("no package id provided")
)

// Store is the catalog and entitlement service a session talks to.
type Store interface {
	store.Catalog
	store.Entitlements
}

// StoreFactory connects to the storefront through a session handle.
type StoreFactory func(baseURL string, h session.Handle) (Store, error)

// Configuration injects the dependencies that all actions share.
type Configuration struct {
	Settings *cli.EnvSettings
	// Getters fetch from the credential dispenser. Files are downloaded
	// with a bare getter instead, so no custom headers reach the CDN.
	Getters getter.Providers
	// Builder establishes the store session.
	Builder session.Builder
	// NewStore connects the store services. Nil means the HTTP storefront
	// client at Settings.StoreURL.
	NewStore StoreFactory

	logging.LogHolder
}

// NewConfiguration returns a Configuration for the given settings, logging to
// stderr.
func NewConfiguration(settings *cli.EnvSettings) *Configuration {
	cfg := new(Configuration)
	cfg.SetLogger(logging.NewHandler(os.Stderr, func() bool { return settings.Debug }))
	cfg.Init(settings)
	return cfg
}

// Init binds the configuration to settings. Dependencies already set are
// kept, so callers may inject their own.
func (cfg *Configuration) Init(settings *cli.EnvSettings) {
	cfg.Settings = settings
	if cfg.Getters == nil {
		cfg.Getters = getter.All(settings)
	}
	if cfg.Builder == nil {
		cfg.Builder = &session.TokenBuilder{Timeout: settings.Timeout}
	}
}

// target is what a run needs before it may touch the network.
type target struct {
	device  *device.Profile
	locale  language.Tag
	baseURL string
}

func (cfg *Configuration) preflight() (*target, error) {
	if cfg.Settings == nil {
		return nil, errors.New("no settings")
	}

	ref := cfg.Settings.Device
	if strings.TrimSpace(ref) == "" {
		ref = device.DefaultRef
	}
	dev, err := device.Load(ref)
	if err != nil {
		return nil, err
	}

	loc := cfg.Settings.Locale
	if strings.TrimSpace(loc) == "" {
		loc = cli.HostLocale()
	}
	tag, err := cli.ParseLocale(loc)
	if err != nil {
		return nil, err
	}

	t := &target{device: dev, locale: tag}
	if cfg.NewStore == nil {
		if t.baseURL, err = store.ParseBaseURL(cfg.Settings.StoreURL); err != nil {
			return nil, err
		}
	} else {
		t.baseURL = strings.TrimSpace(cfg.Settings.StoreURL)
	}
	return t, nil
}

// credentialSources lists the credential strategies in order of preference.
func (cfg *Configuration) credentialSources() []credential.Source {
	return []credential.Source{
		credential.Explicit{Email: cfg.Settings.Email, Token: cfg.Settings.Token},
		&credential.Dispenser{
			URL:     cfg.Settings.Dispenser,
			Getters: cfg.Getters,
			Warn:    func(msg string) { cfg.Logger().Warn(msg) },
		},
	}
}

func (cfg *Configuration) connect(baseURL string, h session.Handle) (Store, error) {
	if cfg.NewStore != nil {
		return cfg.NewStore(baseURL, h)
	}
	c, err := store.NewClient(baseURL, h)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// rejected reports a store refusal of the session token as the
// AuthenticationError it is. The token is only presented to the store on the
// first catalog or purchase request, so that is where a revoked one shows up.
func rejected(err error, cred credential.Credential) error {
	var ue *store.UnauthorizedError
	if errors.As(err, &ue) {
		return &session.AuthenticationError{Email: cred.Email, StatusCode: ue.StatusCode, Reason: "token rejected by the store"}
	}
	return err
}
