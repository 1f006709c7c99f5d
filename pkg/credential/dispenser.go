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
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/playfetch/playfetch/pkg/getter"
)

// PublicDispenserURL is the shared anonymous account dispenser.
const PublicDispenserURL = "https://auroraoss.com/api/auth"

// DispenserUserAgent is the agent the public dispenser expects.
const DispenserUserAgent = "com.aurora.store-4.3.6-20240306"

const dispenserSchema = `{
  "type": "object",
  "required": ["email", "auth"],
  "properties": {
    "email": {"type": "string", "minLength": 1},
    "auth": {"type": "string", "minLength": 1}
  }
}`

var dispenserSchemaLoader = gojsonschema.NewStringLoader(dispenserSchema)

// Dispenser obtains an anonymous credential from a dispenser service.
type Dispenser struct {
	// URL of the dispenser. Empty means PublicDispenserURL.
	URL     string
	Getters getter.Providers
	// Warn receives a notice when the public dispenser is used implicitly.
	Warn func(string)
}

// Applicable is always true; the dispenser is the fallback source.
func (d *Dispenser) Applicable() bool { return true }

// Acquire performs a single GET against the dispenser. Failures are not retried.
func (d *Dispenser) Acquire() (Credential, error) {
	href := strings.TrimSpace(d.URL)
	if href == "" {
		href = PublicDispenserURL
		if d.Warn != nil {
			d.Warn(fmt.Sprintf("neither a dispenser URL nor an email and token were provided, using the public dispenser at %s", PublicDispenserURL))
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return Credential{}, &AcquisitionError{URL: href, Err: errors.Wrap(err, "invalid dispenser URL")}
	}
	providers := d.Getters
	if providers == nil {
		providers = getter.Getters()
	}
	g, err := providers.ByScheme(u.Scheme)
	if err != nil {
		return Credential{}, &AcquisitionError{URL: href, Err: err}
	}

	buf, err := g.Get(href, getter.WithUserAgent(DispenserUserAgent))
	if err != nil {
		var se *getter.StatusError
		if errors.As(err, &se) {
			return Credential{}, &AcquisitionError{URL: href, StatusCode: se.StatusCode, Err: err}
		}
		return Credential{}, &AcquisitionError{URL: href, Err: err}
	}

	return decodeDispenserResponse(href, buf.Bytes())
}

func decodeDispenserResponse(href string, body []byte) (Credential, error) {
	result, err := gojsonschema.Validate(dispenserSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return Credential{}, &MalformedResponseError{URL: href, Err: err}
	}
	if !result.Valid() {
		var sb strings.Builder
		for i, desc := range result.Errors() {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(desc.String())
		}
		return Credential{}, &MalformedResponseError{URL: href, Err: errors.New(sb.String())}
	}

	var resp struct {
		Email string `json:"email"`
		Auth  string `json:"auth"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&resp); err != nil {
		return Credential{}, &MalformedResponseError{URL: href, Err: err}
	}
	if strings.TrimSpace(resp.Email) == "" || strings.TrimSpace(resp.Auth) == "" {
		return Credential{}, &MalformedResponseError{URL: href, Err: errors.New("email and auth must not be blank")}
	}
	return Credential{Email: resp.Email, Token: resp.Auth}, nil
}
