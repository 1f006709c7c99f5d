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

package cmd // import "github.com/playfetch/playfetch/pkg/cmd"

import (
	"io"
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/playfetch/playfetch/internal/logging"
	"github.com/playfetch/playfetch/pkg/action"
	"github.com/playfetch/playfetch/pkg/cli"
	"github.com/playfetch/playfetch/pkg/config"
)

var globalUsage = `Download free Android applications from the app store.

Common actions for playfetch:

- playfetch download:  download the files of an application
- playfetch details:   show the catalog entry of an application
- playfetch devices:   list the built-in device profiles

Credentials are taken from --email and --token when both are set. Otherwise an
anonymous account is requested from the dispenser given by --dispenser, or
from the public dispenser when none is given.

Environment variables:

| Name                   | Description                                                      |
|------------------------|------------------------------------------------------------------|
| $PLAYFETCH_CACHE_HOME  | set an alternative location for storing cached files.           |
| $PLAYFETCH_CONFIG_HOME | set an alternative location for storing playfetch configuration. |
| $PLAYFETCH_CONFIG      | set the path to the configuration file.                          |
| $PLAYFETCH_DEBUG       | indicate whether or not playfetch is running in Debug mode       |
| $PLAYFETCH_DISPENSER   | set the URL of the credential dispenser.                         |
| $PLAYFETCH_EMAIL       | set the account email.                                           |
| $PLAYFETCH_TOKEN       | set the account AUTH token.                                      |
| $PLAYFETCH_LOCALE      | set the locale presented to the store.                           |
| $PLAYFETCH_DEVICE      | set the device profile.                                          |
| $PLAYFETCH_STORE_URL   | set the base URL of the storefront API.                          |
| $PLAYFETCH_TIMEOUT     | set how long to wait for a server to answer, e.g. 30s.           |

The configuration file may set dispenser, locale, device, storeURL and timeout.
It never holds credentials. Flags win over environment variables, which win
over the configuration file.
`

var settings = cli.New()

// NewRootCmd creates the playfetch command tree.
func NewRootCmd(out io.Writer, args []string) (*cobra.Command, error) {
	actionConfig := new(action.Configuration)
	actionConfig.SetLogger(logging.NewHandler(os.Stderr, func() bool { return settings.Debug }))
	return newRootCmdWithConfig(actionConfig, out, args)
}

func newRootCmdWithConfig(actionConfig *action.Configuration, out io.Writer, args []string) (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:          "playfetch",
		Short:        "Download free apps from the app store.",
		Long:         globalUsage,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			settings.ApplyDefaults()
			actionConfig.Init(settings)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	settings.AddFlags(flags)
	registerDeviceCompletion(cmd)

	// We can safely ignore any errors that flags.Parse encounters since
	// those errors will be caught later during the call to cmd.Execution.
	// This call is required to gather configuration information prior to
	// execution.
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Parse(args)

	cmd.AddCommand(
		newDownloadCmd(actionConfig, out),
		newDetailsCmd(actionConfig, out),
		newDevicesCmd(out),
		newEnvCmd(out),
		newVersionCmd(out),
	)

	return cmd, nil
}

// loadConfig applies the configuration file. A missing file is only an error
// when it was asked for explicitly.
func loadConfig(cmd *cobra.Command) error {
	f, err := config.LoadFile(settings.ConfigFile)
	if err != nil {
		_, fromEnv := os.LookupEnv("PLAYFETCH_CONFIG")
		explicit := fromEnv || cmd.Flags().Changed("config")
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return err
	}
	return settings.ApplyConfig(f)
}
