package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mesafina/mesafina/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize mesafina configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure the reservation desk and generates a .mesafina.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
