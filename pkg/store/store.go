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
Package store is a client for the storefront's catalog and entitlement
endpoints.

The storefront speaks JSON:

	GET  {base}/details?doc=<package>          -> App
	POST {base}/purchase  doc=<package>&vc=<version code>&ot=<offer>
	                                           -> {"files": [File, ...]}

All requests go through a session handle, so they carry the session's
authorization and device headers.
*/
package store

import (
	"fmt"

	"github.com/pkg/errors"
)

// OfferKind is the commercial offer under which files are requested.
type OfferKind int

const (
	// OfferFree is the zero-price offer. It is the only one the pipeline uses.
	OfferFree OfferKind = 1
	// OfferPaid is a priced offer.
	OfferPaid OfferKind = 2
)

func (o OfferKind) String() string {
	switch o {
	case OfferFree:
		return "free"
	case OfferPaid:
		return "paid"
	}
	return fmt.Sprintf("offer(%d)", int(o))
}

// App is the catalog entry of an application.
type App struct {
	PackageName string    `json:"packageName"`
	VersionCode int64     `json:"versionCode"`
	VersionName string    `json:"versionName,omitempty"`
	Title       string    `json:"title,omitempty"`
	OfferType   OfferKind `json:"offerType,omitempty"`
}

// Paid reports whether the catalog lists the app under a priced offer.
func (a *App) Paid() bool { return a.OfferType == OfferPaid }

// File describes one downloadable artifact of an entitlement.
type File struct {
	// Name may be blank for the base artifact.
	Name string `json:"name"`
	URL  string `json:"url"`
	// Size is the advertised size in bytes, zero when unknown.
	Size int64 `json:"size,omitempty"`
}

// Catalog looks up application metadata.
type Catalog interface {
	Details(packageID string) (*App, error)
}

// Entitlements obtains the files of an application version under an offer.
type Entitlements interface {
	Purchase(packageID string, versionCode int64, offer OfferKind) ([]File, error)
}

var (
	// ErrNotFound means the catalog has no such package.
	ErrNotFound = errors.New("package not found")
	// ErrPaymentRequired means the offer needs a payment.
	ErrPaymentRequired = errors.New("payment required")
	// ErrUnauthorized means the session was rejected.
	ErrUnauthorized = errors.New("unauthorized")
)

// UnauthorizedError is the store's refusal of the session token. It matches
// ErrUnauthorized.
type UnauthorizedError struct {
	URL        string
	StatusCode int
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s (status %d)", e.URL, ErrUnauthorized, e.StatusCode)
}

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
