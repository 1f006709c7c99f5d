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

package store

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/playfetch/playfetch/pkg/getter"
	"github.com/playfetch/playfetch/pkg/session"
)

// maxResponseSize caps how much of a JSON response is read.
const maxResponseSize = 8 << 20

// Client implements Catalog and Entitlements over HTTP.
type Client struct {
	BaseURL string
	Handle  session.Handle
}

// ErrNoBaseURL is returned when no storefront URL is configured.
var ErrNoBaseURL = errors.New("no store URL configured (set --store-url, PLAYFETCH_STORE_URL or storeURL in the config file)")

// ParseBaseURL checks a storefront base URL and returns it without a
// trailing slash.
func ParseBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoBaseURL
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Errorf("invalid store URL %q", raw)
	}
	return strings.TrimSuffix(raw, "/"), nil
}

// NewClient returns a client for the storefront at baseURL.
func NewClient(baseURL string, h session.Handle) (*Client, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, errors.New("no session")
	}
	return &Client{BaseURL: base, Handle: h}, nil
}

// Details implements Catalog.
func (c *Client) Details(packageID string) (*App, error) {
	href := c.BaseURL + "/details?" + url.Values{"doc": {packageID}}.Encode()
	req, err := http.NewRequest(http.MethodGet, href, nil)
	if err != nil {
		return nil, err
	}

	var app App
	if err := c.do(req, packageID, &app); err != nil {
		return nil, err
	}
	if app.PackageName == "" {
		app.PackageName = packageID
	}
	return &app, nil
}

// Purchase implements Entitlements.
func (c *Client) Purchase(packageID string, versionCode int64, offer OfferKind) ([]File, error) {
	form := url.Values{
		"doc": {packageID},
		"vc":  {strconv.FormatInt(versionCode, 10)},
		"ot":  {strconv.Itoa(int(offer))},
	}
	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/purchase", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp struct {
		Files []File `json:"files"`
	}
	if err := c.do(req, packageID, &resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

func (c *Client) do(req *http.Request, packageID string, v any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.Handle.Client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.Wrapf(ErrNotFound, "%s", packageID)
	case http.StatusPaymentRequired:
		return errors.Wrapf(ErrPaymentRequired, "%s", packageID)
	case http.StatusUnauthorized, http.StatusForbidden:
		return &UnauthorizedError{URL: req.URL.Path, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &getter.StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(v); err != nil {
		return errors.Wrapf(err, "invalid response from %s", req.URL.Path)
	}
	return nil
}
