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
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/text/language"

	"github.com/playfetch/playfetch/pkg/credential"
	"github.com/playfetch/playfetch/pkg/device"
)

func testProfile(t *testing.T) *device.Profile {
	t.Helper()
	p, err := device.Load(device.DefaultRef)
	require.NoError(t, err)
	return p
}

func TestTokenBuilderHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	dev := testProfile(t)
	cred := credential.Credential{Email: "a@example.com", Token: "tok123"}
	sc, err := New(&TokenBuilder{}, cred, dev, language.MustParse("de-DE"))
	require.NoError(t, err)

	assert.Equal(t, cred, sc.Credential)
	assert.Same(t, dev, sc.Device)
	assert.Equal(t, "de-DE", sc.Locale.String())

	resp, err := sc.Handle.Client().Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "GoogleLogin auth=tok123", got.Get("Authorization"))
	assert.Equal(t, dev.UserAgent(), got.Get("User-Agent"))
	assert.Equal(t, "de-DE", got.Get("Accept-Language"))
}

func TestTokenBuilderRequestHeadersWin(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	h, err := (&TokenBuilder{}).Build(credential.Credential{Email: "a", Token: "b"}, testProfile(t), language.English)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "custom")
	resp, err := h.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom", ua)
	assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
}

func TestTokenBuilderBlankCredential(t *testing.T) {
	for _, cred := range []credential.Credential{
		{Email: "", Token: "t"},
		{Email: "a@b.c", Token: ""},
		{Email: " ", Token: " "},
	} {
		_, err := (&TokenBuilder{}).Build(cred, testProfile(t), language.English)
		var ae *AuthenticationError
		require.True(t, errors.As(err, &ae), "%v", cred)
		assert.Equal(t, 0, ae.StatusCode)
	}
}

func TestTokenBuilderCheck(t *testing.T) {
	tests := []struct {
		name   string
		status int
		auth   bool
		ok     bool
	}{
		{"accepted", http.StatusOK, false, true},
		{"unauthorized", http.StatusUnauthorized, true, false},
		{"forbidden", http.StatusForbidden, true, false},
		{"server error", http.StatusInternalServerError, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				assert.Equal(t, "GoogleLogin auth=tok", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			b := &TokenBuilder{CheckURL: srv.URL + "/check"}
			h, err := b.Build(credential.Credential{Email: "a@b.c", Token: "tok"}, testProfile(t), language.English)
			assert.Equal(t, 1, calls, "the check is never retried")

			if tt.ok {
				require.NoError(t, err)
				assert.NotNil(t, h.Client())
				return
			}
			require.Error(t, err)
			var ae *AuthenticationError
			assert.Equal(t, tt.auth, errors.As(err, &ae))
			if tt.auth {
				assert.Equal(t, tt.status, ae.StatusCode)
				assert.Equal(t, "a@b.c", ae.Email)
			}
		})
	}
}

func TestNewRequiresBuilderAndDevice(t *testing.T) {
	cred := credential.Credential{Email: "a", Token: "b"}
	_, err := New(nil, cred, testProfile(t), language.English)
	assert.Error(t, err)

	_, err = New(&TokenBuilder{}, cred, nil, language.English)
	assert.Error(t, err)
}

func TestTokenBuilderTimeoutBoundsHeaders(t *testing.T) {
	cred := credential.Credential{Email: "a@example.com", Token: "tok123"}
	h, err := (&TokenBuilder{Timeout: 7 * time.Second}).Build(cred, testProfile(t), language.Und)
	require.NoError(t, err)

	c := h.Client()
	assert.Zero(t, c.Timeout)

	ot, ok := c.Transport.(*oauth2.Transport)
	require.True(t, ok)
	ht, ok := ot.Base.(*headerTransport)
	require.True(t, ok)
	tr, ok := ht.base.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, tr.ResponseHeaderTimeout)
	assert.Empty(t, ht.headers.Get("Accept-Language"))
}
