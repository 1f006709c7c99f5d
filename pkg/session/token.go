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

package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"

	"github.com/playfetch/playfetch/pkg/credential"
	"github.com/playfetch/playfetch/pkg/device"
)

// AuthScheme is the authorization scheme of store tokens.
const AuthScheme = "GoogleLogin"

// TokenBuilder builds sessions that present the credential token on every
// request.
type TokenBuilder struct {
	// CheckURL, when set, is fetched once to confirm the token is accepted.
	CheckURL string
	// Timeout bounds the wait for response headers when Base is nil. Zero
	// means no bound.
	Timeout time.Duration
	// Base is the underlying transport. Nil means a clone of
	// http.DefaultTransport.
	Base http.RoundTripper
}

type tokenHandle struct {
	client *http.Client
}

func (h *tokenHandle) Client() *http.Client { return h.client }

// Build implements Builder.
func (b *TokenBuilder) Build(cred credential.Credential, dev *device.Profile, locale language.Tag) (Handle, error) {
	if strings.TrimSpace(cred.Email) == "" || strings.TrimSpace(cred.Token) == "" {
		return nil, &AuthenticationError{Email: cred.Email, Reason: "email and token are required"}
	}
	if dev == nil {
		return nil, errors.New("no device profile")
	}

	base := b.Base
	if base == nil {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.ResponseHeaderTimeout = b.Timeout
		base = tr
	}

	headers := http.Header{}
	headers.Set("User-Agent", dev.UserAgent())
	if locale != language.Und {
		headers.Set("Accept-Language", locale.String())
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{
		TokenType:   AuthScheme,
		AccessToken: "auth=" + cred.Token,
	})
	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: src,
			Base:   &headerTransport{base: base, headers: headers},
		},
	}

	if b.CheckURL != "" {
		if err := check(client, b.CheckURL, cred.Email); err != nil {
			return nil, err
		}
	}
	return &tokenHandle{client: client}, nil
}

func check(client *http.Client, href, email string) error {
	resp, err := client.Get(href)
	if err != nil {
		return errors.Wrap(err, "session check failed")
	}
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return &AuthenticationError{Email: email, StatusCode: resp.StatusCode, Reason: "token rejected"}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errors.Errorf("session check failed: %s", resp.Status)
	}
	return nil
}

// headerTransport sets default headers on outgoing requests. Headers already
// present on the request win.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.headers {
		if req.Header.Get(k) == "" {
			req.Header[k] = v
		}
	}
	return t.base.RoundTrip(req)
}
