package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/user/tubefetch/internal/state"
)

func init() {
	rootCmd.AddCommand(usersCmd)
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users who started the bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		profiles := state.NewProfileStore(cfg.ProfilesPath())

		list, err := profiles.List(context.Background())
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No users recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "USER ID\tUSERNAME\tNAME\tSTARTED")
		for _, p := range list {
			name := p.FirstName
			if p.LastName != "" {
				name += " " + p.LastName
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				p.UserID,
				p.Username,
				name,
				p.StartedAt.Format("2006-01-02 15:04:05"),
			)
		}
		return w.Flush()
	},
}
