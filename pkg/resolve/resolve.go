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
Package resolve decides which version of an application to fetch and which
files the store grants for it.
*/
package resolve

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/playfetch/playfetch/pkg/store"
)

// Version is a package and the version code chosen for it.
type Version struct {
	PackageID   string
	VersionCode int64
	// App is the catalog entry, nil when the version was pinned.
	App *store.App
}

// Pinned reports whether the version code came from the caller.
func (v Version) Pinned() bool { return v.App == nil }

// VersionResolver picks the version code to download.
type VersionResolver struct {
	Catalog store.Catalog
}

// Resolve returns pinned unchanged when it is set, without asking the catalog.
// Otherwise it returns the latest version the catalog knows.
func (r *VersionResolver) Resolve(packageID string, pinned *int64) (Version, error) {
	if strings.TrimSpace(packageID) == "" {
		return Version{}, errors.New("package id is required")
	}

	if pinned != nil {
		if *pinned < 0 {
			return Version{}, &InvalidVersionError{PackageID: packageID, VersionCode: *pinned}
		}
		return Version{PackageID: packageID, VersionCode: *pinned}, nil
	}

	if r.Catalog == nil {
		return Version{}, errors.New("no catalog configured")
	}
	app, err := r.Catalog.Details(packageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Version{}, &PackageNotFoundError{PackageID: packageID}
		}
		return Version{}, errors.Wrapf(err, "failed to look up %q", packageID)
	}
	if app.VersionCode < 0 {
		return Version{}, &InvalidVersionError{PackageID: packageID, VersionCode: app.VersionCode}
	}
	return Version{PackageID: packageID, VersionCode: app.VersionCode, App: app}, nil
}

// EntitlementResolver obtains the file descriptors for a version.
type EntitlementResolver struct {
	Entitlements store.Entitlements
}

// ResolveFiles requests the files of v under offer. Only the free offer is
// supported; anything else fails before a request is made. An empty result
// is not an error.
func (r *EntitlementResolver) ResolveFiles(v Version, offer store.OfferKind) ([]store.File, error) {
	if offer != store.OfferFree {
		return nil, &UnsupportedOfferError{PackageID: v.PackageID, Offer: offer}
	}
	if v.App != nil && v.App.Paid() {
		return nil, &UnsupportedOfferError{PackageID: v.PackageID, Offer: v.App.OfferType}
	}
	if r.Entitlements == nil {
		return nil, errors.New("no entitlement service configured")
	}

	files, err := r.Entitlements.Purchase(v.PackageID, v.VersionCode, offer)
	if err != nil {
		if errors.Is(err, store.ErrPaymentRequired) {
			return nil, &UnsupportedOfferError{PackageID: v.PackageID, Offer: store.OfferPaid}
		}
		return nil, &EntitlementError{PackageID: v.PackageID, VersionCode: v.VersionCode, Err: err}
	}
	return files, nil
}
