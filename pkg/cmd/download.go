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
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/playfetch/playfetch/pkg/action"
	"github.com/playfetch/playfetch/pkg/cli/output"
	"github.com/playfetch/playfetch/pkg/cli/require"
)

const downloadDesc = `
Download the files of a free application into a directory.

The latest version is downloaded unless VERSION_CODE is given. OUTPUT_DIR
defaults to the current directory and is created when it does not exist.
Existing files of the same name are overwritten.

Every file is attempted even if an earlier one fails. Failed files are listed
in the summary, and the command still succeeds.

	$ playfetch download com.example.app ./example
	$ playfetch download com.example.app ./example 1234 --include 'split_*'
`

func newDownloadCmd(cfg *action.Configuration, out io.Writer) *cobra.Command {
	client := action.NewDownload(cfg)
	var outfmt output.Format

	cmd := &cobra.Command{
		Use:   "download PACKAGE [OUTPUT_DIR] [VERSION_CODE]",
		Short: "download the files of a free app",
		Long:  downloadDesc,
		Args:  require.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				client.OutputDir = args[1]
			}
			if len(args) > 2 {
				vc, err := strconv.ParseInt(args[2], 10, 64)
				if err != nil {
					return errors.Errorf("invalid version code %q", args[2])
				}
				client.VersionCode = &vc
			}

			// keep machine readable output clean
			client.Out = out
			if outfmt != output.Table {
				client.Out = cmd.ErrOrStderr()
			}

			rep, err := client.Run(args[0])
			if err != nil {
				return err
			}
			if err := outfmt.Write(out, &downloadWriter{rep}); err != nil {
				return err
			}
			if outfmt == output.Table {
				fmt.Fprintln(out, "Download complete.")
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&client.Include, "include", nil, "only download files whose name matches one of these glob patterns")
	f.IntVar(&client.Retries, "retries", 0, "retry a file this many times after a network error or a server error")
	f.BoolVar(&client.VerifySize, "verify-size", false, "fail files whose length differs from the size announced by the store")
	f.BoolVar(&client.Progress, "progress", true, "show byte progress when writing to a terminal")
	bindOutputFlag(cmd, &outfmt)

	return cmd
}

type downloadWriter struct {
	report *action.Report
}

func (w *downloadWriter) WriteTable(out io.Writer) error {
	r := w.report
	fmt.Fprintf(out, "\n%s version %d: %d of %d files saved to %s\n\n", r.PackageID, r.VersionCode, r.Succeeded(), len(r.Files), r.OutputDir)
	if len(r.Files) == 0 {
		return nil
	}

	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow("FILE", "SIZE", "STATUS")
	for _, f := range r.Files {
		status := "ok"
		if !f.OK {
			status = "failed: " + f.Error
		}
		table.AddRow(f.Name, humanize.Bytes(uint64(f.Bytes)), status)
	}
	return output.EncodeTable(out, table)
}

func (w *downloadWriter) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, w.report)
}

func (w *downloadWriter) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, w.report)
}
