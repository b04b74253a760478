package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cityreports/miniapp/adapter/cli"
)

var Cmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the user store",
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show which store file is in use and what it holds",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.Container == nil {
			return errors.New("user service not configured")
		}
		c := app.Container
		info := c.UserService.Describe(cmd.Context())

		if locateJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Path:       %s\n", info.Path)
		if info.AbsolutePath != "" {
			fmt.Fprintf(out, "Absolute:   %s\n", info.AbsolutePath)
		}
		fmt.Fprintf(out, "Exists:     %t\n", info.Exists)
		fmt.Fprintf(out, "Candidates: %s\n", strings.Join(c.StoreLocation.Candidates, ", "))
		if info.Error != "" {
			fmt.Fprintf(out, "Error:      %s\n", info.Error)
		}
		if info.Exists {
			fmt.Fprintf(out, "Users:      %d\n", info.UserCount)
			for _, id := range info.UserIDs {
				fmt.Fprintf(out, "  - %s\n", id)
			}
		}
		return nil
	},
}

var locateJSON bool

func init() {
	locateCmd.Flags().BoolVar(&locateJSON, "json", false, "output as JSON")
	Cmd.AddCommand(locateCmd)
}
