package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "mesafina",
	Short: "AI reservation desk for restaurants",
	Long: `Mesafina runs a multi-tenant restaurant reservation platform with a
conversational booking assistant. Guests chat in natural language; the
platform normalizes garbled time expressions, resolves identity conflicts,
and enforces modification windows before anything touches the books.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".mesafina.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
