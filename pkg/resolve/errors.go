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

package resolve

import (
	"fmt"

	"github.com/playfetch/playfetch/pkg/store"
)

// PackageNotFoundError means the catalog has no entry for the package.
type PackageNotFoundError struct {
	PackageID string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("package %q not found", e.PackageID)
}

// InvalidVersionError means a version code is negative.
type InvalidVersionError struct {
	PackageID   string
	VersionCode int64
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version code %d for %q", e.VersionCode, e.PackageID)
}

// UnsupportedOfferError means the files are only available under a paid
// offer. Paid acquisition is not supported.
type UnsupportedOfferError struct {
	PackageID string
	Offer     store.OfferKind
}

func (e *UnsupportedOfferError) Error() string {
	return fmt.Sprintf("%q requires a %s offer, only free apps can be downloaded", e.PackageID, e.Offer)
}

// EntitlementError means the service refused to grant the files.
type EntitlementError struct {
	PackageID   string
	VersionCode int64
	Err         error
}

func (e *EntitlementError) Error() string {
	return fmt.Sprintf("could not obtain files for %q version %d: %v", e.PackageID, e.VersionCode, e.Err)
}

func (e *EntitlementError) Unwrap() error { return e.Err }
