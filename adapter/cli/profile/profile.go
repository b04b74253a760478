package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cityreports/miniapp/adapter/cli"
)

var Cmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect user profiles",
}

var getCmd = &cobra.Command{
	Use:   "get <user_id>",
	Short: "Print a user's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			return errors.New("user service not configured")
		}

		profile, err := app.Container.UserService.GetProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if profileJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(profile)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		rows := []struct {
			label string
			value json.RawMessage
		}{
			{"Name", profile.Name},
			{"Username", profile.Username},
			{"Age", profile.Age},
			{"City", profile.City},
			{"Registered", profile.RegistrationDate},
			{"Reports", profile.TotalReports},
			{"Active", profile.ActiveReports},
			{"Resolved", profile.ResolvedReports},
		}
		for _, row := range rows {
			fmt.Fprintf(w, "%s:\t%s\n", row.label, display(row.value))
		}
		return w.Flush()
	},
}

// display unquotes JSON strings and prints other values as-is.
func display(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

var profileJSON bool

func init() {
	getCmd.Flags().BoolVar(&profileJSON, "json", false, "output as JSON")
	Cmd.AddCommand(getCmd)
}
