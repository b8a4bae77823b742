// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"bgsetup-cli/internal/config"

	"github.com/spf13/cobra"
)

var (
	// configForce overwrites an existing config file on init.
	configForce bool

	// configCmd groups configuration subcommands.
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the bgsetup configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as TOML",
		RunE:  runConfigShow,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE:  runConfigPath,
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE:  runConfigInit,
	}
)

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fail(err)
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		return fail(err)
	}
	os.Stdout.Write(data)
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	path, err := config.ConfigFilePath()
	if err != nil {
		return fail(err)
	}
	fmt.Println(path)
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, err := config.WriteDefault(configForce)
	if err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintln(os.Stderr, WarningStyle.Render("Config already exists: ")+path)
			fmt.Fprintln(os.Stderr, "Use "+CmdStyle.Render("--force")+" to overwrite it.")
			return &ExitError{Code: 1}
		}
		return fail(err)
	}
	fmt.Println(SuccessStyle.Render("✓") + " wrote " + CmdStyle.Render(path))
	return nil
}
