package cmd

import (
	"fmt"

	"github.com/nikogura/job-assistant/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a starter config file to $HOME/.job-assistant/config.yaml (or --config)
and create the profiles directory next to it. An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) (err error) {
	path, err := config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Set ANTHROPIC_API_KEY in your environment (or anthropic_api_key in the file) before generating.")
	return err
}
