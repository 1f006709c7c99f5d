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
Package session turns a credential and a device profile into an authenticated
handle on the store.

The Builder interface is the seam between the pipeline and the store's
authentication protocol. TokenBuilder is the default implementation.
*/
package session

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/playfetch/playfetch/pkg/credential"
	"github.com/playfetch/playfetch/pkg/device"
)

// Handle is an authenticated connection to the store.
type Handle interface {
	// Client returns an HTTP client whose requests carry the session's
	// authorization and device headers.
	Client() *http.Client
}

// Builder establishes a session. It is called once per run.
type Builder interface {
	Build(cred credential.Credential, dev *device.Profile, locale language.Tag) (Handle, error)
}

// Context bundles everything a run needs to talk to the store. It is created
// once and never refreshed.
type Context struct {
	Credential credential.Credential
	Device     *device.Profile
	Locale     language.Tag
	Handle     Handle
}

// New builds a session Context.
func New(b Builder, cred credential.Credential, dev *device.Profile, locale language.Tag) (*Context, error) {
	if b == nil {
		return nil, errors.New("no session builder configured")
	}
	if dev == nil {
		return nil, errors.New("no device profile")
	}
	h, err := b.Build(cred, dev, locale)
	if err != nil {
		return nil, err
	}
	return &Context{
		Credential: cred,
		Device:     dev,
		Locale:     locale,
		Handle:     h,
	}, nil
}

// AuthenticationError means the store rejected the credential.
type AuthenticationError struct {
	Email string
	// StatusCode is zero when the credential was rejected locally.
	StatusCode int
	Reason     string
}

func (e *AuthenticationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authentication failed for %q: %s (status %d)", e.Email, e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("authentication failed for %q: %s", e.Email, e.Reason)
}
