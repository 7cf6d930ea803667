// Package commands implements the modelbuilder command tree.
package commands

import (
	"context"
	"errors"
	"io/fs"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/modelbuilder/internal/cli/ui"
)

// NewRootCommand returns the modelbuilder command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "modelbuilder",
		Short: "Generate typed models from organization metadata",
		Long: color.CyanString(`modelbuilder reads entity, option set and message metadata of an
organization and generates typed entity, enum, request and response
declarations for it.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadDotEnv()
		},
	}
	root.PersistentFlags().String("config", "", "config file (default ./modelbuilder.yaml or $HOME/.modelbuilder/modelbuilder.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "development logging at debug level")

	root.AddCommand(NewGenerateCommand())
	root.AddCommand(NewSnapshotCommand())
	root.AddCommand(NewMirrorCommand())
	root.AddCommand(NewVersionCommand())
	return root
}

// loadDotEnv exports the variables of ./.env that are not already set.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// settings reads the settings of cmd.
func settings(cmd *cobra.Command) (*Settings, error) {
	configFile, _ := cmd.Flags().GetString("config")
	return LoadSettings(cmd.Flags(), configFile)
}

func newLogger(verbose bool) *zap.Logger {
	build := zap.NewProduction
	if verbose {
		build = zap.NewDevelopment
	}
	log, err := build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// Execute runs the command tree and prints a failure in red.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		ui.Error(root.ErrOrStderr(), err)
		return err
	}
	return nil
}
