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

package cmd

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/playfetch/playfetch/pkg/cli/output"
	"github.com/playfetch/playfetch/pkg/cli/require"
	"github.com/playfetch/playfetch/pkg/device"
)

const devicesDesc = `
List the built-in device profiles.

With a profile reference, print the properties of that profile instead. The
reference is either 'included:<name>' or the path of a properties file.
`

type deviceInfo struct {
	Ref     string `json:"ref"`
	Name    string `json:"name"`
	Model   string `json:"model"`
	SDK     string `json:"sdk"`
	Default bool   `json:"default"`
}

func newDevicesCmd(out io.Writer) *cobra.Command {
	var outfmt output.Format

	cmd := &cobra.Command{
		Use:   "devices [PROFILE]",
		Short: "list the built-in device profiles",
		Long:  devicesDesc,
		Args:  require.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) == 1 {
				p, err := device.Load(args[0])
				if err != nil {
					return err
				}
				return outfmt.Write(out, &profileWriter{p})
			}

			var infos []deviceInfo
			for _, name := range device.Included() {
				ref := device.IncludedPrefix + name
				p, err := device.LoadIncluded(name)
				if err != nil {
					return err
				}
				infos = append(infos, deviceInfo{
					Ref:     ref,
					Name:    p.DisplayName(),
					Model:   p.Get("Build.MODEL"),
					SDK:     p.Get("Build.VERSION.SDK_INT"),
					Default: ref == device.DefaultRef,
				})
			}
			return outfmt.Write(out, devicesWriter(infos))
		},
	}

	bindOutputFlag(cmd, &outfmt)
	return cmd
}

type devicesWriter []deviceInfo

func (w devicesWriter) WriteTable(out io.Writer) error {
	table := uitable.New()
	table.AddRow("PROFILE", "NAME", "MODEL", "SDK", "DEFAULT")
	for _, d := range w {
		def := ""
		if d.Default {
			def = "*"
		}
		table.AddRow(d.Ref, d.Name, d.Model, d.SDK, def)
	}
	return output.EncodeTable(out, table)
}

func (w devicesWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w)
}

func (w devicesWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w)
}

type profileWriter struct {
	profile *device.Profile
}

func (w *profileWriter) WriteTable(out io.Writer) error {
	for _, k := range w.profile.Keys() {
		fmt.Fprintf(out, "%s=%s\n", k, w.profile.Get(k))
	}
	return nil
}

func (w *profileWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w.profile.Properties())
}

func (w *profileWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w.profile.Properties())
}
