package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/documind-hq/documind/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default documind.yml config file",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runInit())
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit() error {
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(cfgFile); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", cfgFile)
	fmt.Println("Set OPENAI_API_KEY (or switch provider to ollama) before serving.")
	return nil
}
