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
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/playfetch/playfetch/pkg/action"
	"github.com/playfetch/playfetch/pkg/cli/output"
	"github.com/playfetch/playfetch/pkg/cli/require"
	"github.com/playfetch/playfetch/pkg/store"
)

const detailsDesc = `
Show the catalog entry of an application: its title, latest version and offer.
`

func newDetailsCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewDetails(cfg)
	var outfmt output.Format

	cmd := &cobra.Command{
		Use:   "details PACKAGE",
		Short: "show the catalog entry of an app",
		Long:  detailsDesc,
		Args:  require.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := client.Run(args[0])
			if err != nil {
				return err
			}
			return outfmt.Write(out, &detailsWriter{app})
		},
	}

	bindOutputFlag(cmd, &outfmt)
	return cmd
}

type detailsWriter struct {
	app *store.App
}

func (w *detailsWriter) WriteTable(out io.Writer) error {
	table := uitable.New()
	table.AddRow("PACKAGE:", w.app.PackageName)
	table.AddRow("TITLE:", w.app.Title)
	table.AddRow("VERSION CODE:", w.app.VersionCode)
	table.AddRow("VERSION:", w.app.VersionName)
	table.AddRow("OFFER:", w.app.OfferType)
	return output.EncodeTable(out, table)
}

func (w *detailsWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w.app)
}

func (w *detailsWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w.app)
}
