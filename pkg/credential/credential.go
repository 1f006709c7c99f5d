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

package credential

import (
	"fmt"
	"strings"
)

// Credential is an account identity and its authentication token.
type Credential struct {
	Email string
	Token string
}

// String hides the token.
func (c Credential) String() string {
	return fmt.Sprintf("Credential{Email: %q, Token: <redacted>}", c.Email)
}

// Source is one strategy for obtaining a Credential.
type Source interface {
	// Applicable reports whether the source can be tried with its current input.
	Applicable() bool
	// Acquire produces the credential.
	Acquire() (Credential, error)
}

// Explicit is a credential supplied directly by the user.
type Explicit struct {
	Email string
	Token string
}

// Applicable is true when both the email and the token are non-blank.
func (e Explicit) Applicable() bool {
	return strings.TrimSpace(e.Email) != "" && strings.TrimSpace(e.Token) != ""
}

// Acquire returns the supplied values unchanged. It never touches the network.
func (e Explicit) Acquire() (Credential, error) {
	return Credential{Email: e.Email, Token: e.Token}, nil
}

// Acquire asks each source in turn and returns the credential of the first
// applicable one. Later sources are not consulted, even if it fails.
func Acquire(sources ...Source) (Credential, error) {
	for _, s := range sources {
		if s == nil || !s.Applicable() {
			continue
		}
		return s.Acquire()
	}
	return Credential{}, ErrNoSource
}
