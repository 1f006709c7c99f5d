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

package cli

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// HostLocale returns the host's locale as a BCP 47 tag, derived from the
// POSIX locale environment. It falls back to en-US.
func HostLocale() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		if tag, err := ParseLocale(posixToBCP47(v)); err == nil {
			return tag.String()
		}
	}
	return language.AmericanEnglish.String()
}

// ParseLocale parses a BCP 47 language tag such as "en-US". POSIX style
// "en_US" is accepted as well.
func ParseLocale(s string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, errors.Wrapf(err, "invalid locale %q", s)
	}
	return tag, nil
}

// posixToBCP47 strips the codeset and modifier from a POSIX locale name,
// e.g. "de_DE.UTF-8@euro" becomes "de-DE".
func posixToBCP47(v string) string {
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	if v == "C" || v == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(v, "_", "-")
}
