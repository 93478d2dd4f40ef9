package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/xavierca1/dealer-leads/internal/config"
)

func rosterCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Print the advisor roster and model catalog that serve would use",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				file = cfg.RosterFile
			}
			dir, err := config.LoadDirectory(file)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCOLOR\tEMAIL")
			for _, adv := range dir.Advisors {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", adv.ID, adv.Name, adv.Color, adv.Email)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nModels: %v\n", dir.Models)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "roster YAML file (defaults to ROSTER_FILE)")
	return cmd
}
