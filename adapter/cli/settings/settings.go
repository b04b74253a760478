package settings

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cityreports/miniapp/adapter/cli"
)

var Cmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change user notification settings",
}

var getCmd = &cobra.Command{
	Use:   "get <user_id>",
	Short: "Print a user's notification settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			return errors.New("user service not configured")
		}

		settings, err := app.Container.UserService.GetSettings(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		if !settingsCompact {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(settings)
	},
}

var setCmd = &cobra.Command{
	Use:   "set <user_id> <setting> <value>",
	Short: "Store a setting on a user's record",
	Long: `Store a setting on a user's record. The value is parsed as JSON,
so "false" stores a boolean; anything that is not valid JSON is stored
as a string. The store file must already exist.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			return errors.New("user service not configured")
		}

		userID, setting := args[0], args[1]
		value := ParseValue(args[2])
		if err := app.Container.UserService.UpdateSetting(cmd.Context(), userID, setting, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s saved for user %s.\n", setting, userID)
		return nil
	},
}

// ParseValue reads a command-line value as JSON, falling back to a string.
func ParseValue(arg string) any {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	return arg
}

var settingsCompact bool

func init() {
	getCmd.Flags().BoolVar(&settingsCompact, "compact", false, "print JSON on one line")

	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(setCmd)
}
