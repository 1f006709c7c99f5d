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
	"text/template"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/playfetch/playfetch/internal/version"
	"github.com/playfetch/playfetch/pkg/cli/output"
	"github.com/playfetch/playfetch/pkg/cli/require"
	"github.com/playfetch/playfetch/pkg/credential"
	"github.com/playfetch/playfetch/pkg/device"
)

const versionDesc = `
Show the version of playfetch and the agents it presents to servers.

playfetch does not identify as itself everywhere. The dispenser is sent the
agent of the app it was written for, and the store is sent the agent of the
configured device profile, so the store serves files for that device. Use
--device to see the agent of another profile.

With --short only the version is printed, followed by the abbreviated commit
when one is known. --template formats the report with Go templates; the fields
are .Version, .GitCommit, .GitTreeState, .GoVersion, .ClientAgent,
.DispenserAgent and .StoreAgent.
`

// versionReport is the build of playfetch and the agents each server sees.
type versionReport struct {
	version.BuildInfo
	ClientAgent    string `json:"client_agent"`
	DispenserAgent string `json:"dispenser_agent"`
	StoreAgent     string `json:"store_agent"`
}

type versionOptions struct {
	short    bool
	template string
	outfmt   output.Format
}

func newVersionCmd(out io.Writer) *cobra.Command {
	o := &versionOptions{}

	cmd := &cobra.Command{
		Use:               "version",
		Short:             "print the playfetch version and the agents it presents",
		Long:              versionDesc,
		Args:              require.NoArgs,
		ValidArgsFunction: noMoreArgsCompFunc,
		RunE: func(_ *cobra.Command, _ []string) error {
			return o.run(out, settings.Device)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.short, "short", false, "print the version number only")
	f.StringVar(&o.template, "template", "", "template for version string format")
	bindOutputFlag(cmd, &o.outfmt)

	return cmd
}

func (o *versionOptions) run(out io.Writer, deviceRef string) error {
	if o.short {
		fmt.Fprintln(out, shortVersion(version.Get()))
		return nil
	}

	p, err := device.Load(deviceRef)
	if err != nil {
		return err
	}
	r := versionReport{
		BuildInfo:      version.Get(),
		ClientAgent:    version.GetUserAgent(),
		DispenserAgent: credential.DispenserUserAgent,
		StoreAgent:     p.UserAgent(),
	}

	if o.template != "" {
		tt, err := template.New("version").Parse(o.template)
		if err != nil {
			return err
		}
		return tt.Execute(out, r)
	}
	return o.outfmt.Write(out, r)
}

func shortVersion(v version.BuildInfo) string {
	if len(v.GitCommit) >= 7 {
		return fmt.Sprintf("%s+g%s", v.Version, v.GitCommit[:7])
	}
	return v.Version
}

func (r versionReport) WriteTable(out io.Writer) error {
	table := uitable.New()
	table.Wrap = false
	table.AddRow("Version:", r.Version)
	table.AddRow("Git Commit:", r.GitCommit)
	table.AddRow("Git Tree State:", r.GitTreeState)
	table.AddRow("Go Version:", r.GoVersion)
	table.AddRow("Client Agent:", r.ClientAgent)
	table.AddRow("Dispenser Agent:", r.DispenserAgent)
	table.AddRow("Store Agent:", r.StoreAgent)
	return output.EncodeTable(out, table)
}

func (r versionReport) WriteJSON(out io.Writer) error {
	return output.EncodeJSON(out, r)
}

func (r versionReport) WriteYAML(out io.Writer) error {
	return output.EncodeYAML(out, r)
}
