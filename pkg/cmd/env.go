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
	"log"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/playfetch/playfetch/pkg/cli/output"
	"github.com/playfetch/playfetch/pkg/cli/require"
)

var envHelp = `
Env prints out all the environment information in use by playfetch.

The account token is never printed.
`

func newEnvCmd(out io.Writer) *cobra.Command {
	outfmtEnv := keyValueENV
	cmd := &cobra.Command{
		Use:   "env [NAME]",
		Short: "playfetch client environment information",
		Long:  envHelp,
		Args:  require.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return getSortedEnvVarKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			envVars := settings.EnvVars()

			if len(args) == 0 {
				return outfmtEnv.WriteEnvs(out, envVars)
			}

			key := args[0]
			return outfmtEnv.WriteSingleEnv(out, key, envVars[key])
		},
	}

	bindEnvOutputFlag(cmd, &outfmtEnv)

	return cmd
}

func getSortedEnvVarKeys() []string {
	envVars := settings.EnvVars()

	keys := make([]string, 0, len(envVars))
	for k := range envVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

type envFormat string

const (
	keyValueENV envFormat = "env"
	jsonENV     envFormat = "json"
	yamlENV     envFormat = "yaml"
)

func envFormats() []string {
	return []string{keyValueENV.String(), jsonENV.String(), yamlENV.String()}
}

func envFormatWithDesc() map[string]string {
	return map[string]string{
		keyValueENV.String(): "Output result in KEY=VALUE format",
		jsonENV.String():     "Output result in JSON format",
		yamlENV.String():     "Output result in YAML format",
	}
}

func (o envFormat) String() string {
	return string(o)
}

func (o *envFormat) Set(s string) error {
	switch envFormat(s) {
	case keyValueENV, jsonENV, yamlENV:
		*o = envFormat(s)
		return nil
	}
	return output.ErrInvalidFormatType
}

func (o envFormat) Type() string {
	return "format"
}

func bindEnvOutputFlag(cmd *cobra.Command, varRef *envFormat) {
	cmd.Flags().VarP(varRef, outputFlag, "o",
		fmt.Sprintf("prints the output in the specified format. Allowed values: %s", strings.Join(envFormats(), ", ")))

	err := cmd.RegisterFlagCompletionFunc(outputFlag, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var formatNames []string
		for format, desc := range envFormatWithDesc() {
			formatNames = append(formatNames, fmt.Sprintf("%s\t%s", format, desc))
		}

		// Sort the results to get a deterministic order for the tests
		sort.Strings(formatNames)
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})

	if err != nil {
		log.Fatal(err)
	}
}

func (o envFormat) WriteEnvs(out io.Writer, e map[string]string) error {
	switch o {
	case keyValueENV:
		// sorted for a constant output across calls
		for _, k := range getSortedEnvVarKeys() {
			fmt.Fprintf(out, "%s=\"%s\"\n", k, e[k])
		}
		return nil
	case jsonENV:
		return output.EncodeJSON(out, e)
	case yamlENV:
		return output.EncodeYAML(out, e)
	}
	return output.ErrInvalidFormatType
}

func (o envFormat) WriteSingleEnv(out io.Writer, key, value string) error {
	switch o {
	case keyValueENV:
		fmt.Fprintf(out, "%s\n", value)
		return nil
	case jsonENV:
		return output.EncodeJSON(out, map[string]string{key: value})
	case yamlENV:
		return output.EncodeYAML(out, map[string]string{key: value})
	}
	return output.ErrInvalidFormatType
}
