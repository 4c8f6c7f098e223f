// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stevedore-cli/internal/config"
)

// configCmd is the `stevedore config` command tree
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stevedore configuration",
	Long: `Manage stevedore configuration.

Configuration is stored in:
  - Linux: ~/.config/stevedore/config.toml
  - macOS: ~/Library/Application Support/stevedore/config.toml
  - Windows: %APPDATA%\stevedore\config.toml

Values can also be set via STEVEDORE_* environment variables, e.g.
STEVEDORE_CONTAINER_ENGINE=podman.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	})
}

func showConfig() error {
	current := cfg
	if current == nil {
		current = config.DefaultConfig()
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if path, err := config.DefaultConfigFilePath(); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), path)
		} else {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	}
	fmt.Println()

	engineValue := current.ContainerEngine
	if engineValue == "" {
		engineValue = "(auto-detect)"
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("container_engine"), SuccessStyle.Render(engineValue))
	fmt.Printf("%s: %s\n", CmdStyle.Render("verbose"), SuccessStyle.Render(fmt.Sprintf("%t", current.Verbose)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("build.no_cache"), SuccessStyle.Render(fmt.Sprintf("%t", current.Build.NoCache)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("build.tag_prefix"), SuccessStyle.Render(current.Build.TagPrefix))
	fmt.Printf("%s: %s\n", CmdStyle.Render("run.host_port"), SuccessStyle.Render(fmt.Sprintf("%d", current.Run.HostPort)))

	return nil
}

func initConfigFile() error {
	path, err := config.DefaultConfigFilePath()
	if err != nil {
		return err
	}

	if err := config.WriteDefault(path); err != nil {
		return err
	}

	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
