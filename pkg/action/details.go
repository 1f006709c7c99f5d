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
	"strings"

	"github.com/playfetch/playfetch/pkg/credential"
	"github.com/playfetch/playfetch/pkg/resolve"
	"github.com/playfetch/playfetch/pkg/session"
	"github.com/playfetch/playfetch/pkg/store"
)

// Details is the action for looking up an application in the catalog.
//
// It provides the implementation of 'playfetch details'.
type Details struct {
	cfg *Configuration
}

// NewDetails creates a new Details object with the given configuration.
func NewDetails(cfg *Configuration) *Details {
	return &Details{cfg: cfg}
}

// Run returns the catalog entry of packageID.
func (d *Details) Run(packageID string) (*store.App, error) {
	if strings.TrimSpace(packageID) == "" {
		return nil, errMissingPackage
	}
	tgt, err := d.cfg.preflight()
	if err != nil {
		return nil, err
	}

	cred, err := credential.Acquire(d.cfg.credentialSources()...)
	if err != nil {
		return nil, err
	}
	sc, err := session.New(d.cfg.Builder, cred, tgt.device, tgt.locale)
	if err != nil {
		return nil, err
	}
	st, err := d.cfg.connect(tgt.baseURL, sc.Handle)
	if err != nil {
		return nil, err
	}

	v, err := (&resolve.VersionResolver{Catalog: st}).Resolve(packageID, nil)
	if err != nil {
		return nil, rejected(err, cred)
	}
	return v.App, nil
}
