package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pointer/internal/app"
	"pointer/internal/config"
	"pointer/internal/logging"
)

var (
	version = "0.1.0"
	model   string
	autoRun bool
	dryRun  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pointer",
		Short: "Chat with a local AI model about your codebase",
		Long: `Pointer is an interactive assistant backed by a locally reachable
OpenAI-compatible model server. It indexes the current project, streams
model responses, and lets the model read, edit, and search your code
through a fixed set of tools.`,
		RunE: runApp,
	}

	rootCmd.PersistentFlags().StringVar(&model, "model", "", "model id to use")
	rootCmd.PersistentFlags().BoolVar(&autoRun, "auto", false, "run tool calls without confirmation")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "show tool calls without executing them")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pointer version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if model != "" {
		cfg.API.Model = model
	}
	if cmd.Flags().Changed("auto") {
		cfg.Mode.AutoRunTools = autoRun
	}
	if cmd.Flags().Changed("dry-run") {
		cfg.Mode.DryRun = dryRun
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Logging.File {
		if err := logging.EnableFileLogging(config.Dir(), logging.ParseLevel(cfg.Logging.Level)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
		}
		defer logging.Close()
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	application, err := app.New(cfg, workDir)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return application.Run()
}
