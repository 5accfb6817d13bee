package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/lshclust/domain"
	"github.com/ludo-technologies/lshclust/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	force      bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		configPath: config.ConfigFileName,
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a .lshclust.toml configuration file",
		Long: `Create a configuration file holding every setting at its default value.

lshclust looks for .lshclust.toml in the directory of the first input and
every parent directory, so a file in the project root covers all data below.

Examples:
  # Create .lshclust.toml in the current directory
  lshclust init

  # Overwrite an existing file
  lshclust init --force`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", i.configPath, "Configuration file path")

	return cmd
}

func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return domain.NewInvalidInputError("failed to resolve config path", err)
	}

	if _, err := os.Stat(configPath); err == nil && !i.force {
		return domain.NewInvalidInputError(
			fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath), nil)
	}

	content, err := config.GenerateDefaultConfigTOML()
	if err != nil {
		return domain.NewConfigError("failed to render default configuration", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return domain.NewOutputError("failed to create config directory", err)
	}
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return domain.NewOutputError("failed to write configuration file", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", relPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Edit it, then run 'lshclust cluster <files...>' from this directory or below.\n")
	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
