package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnema/amxbpm-admin-cli/internal/adapters/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var secretSections = []string{"admin", "bpm"}

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage amxctrl.toml and stored passwords",
	}

	cmd.AddCommand(
		newConfigInitCmd(app),
		newConfigShowCmd(app),
		newConfigEncodeCmd(),
		newConfigSecretCmd(app),
	)

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file holding the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = app.global.configFile
			}
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("resolve home directory: %w", err)
				}
				path = filepath.Join(home, ".amxctl", config.FileName)
			}

			if err := config.Write(path, config.Defaults(), force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", path)
			return err
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "file to write (default: --config, else ~/.amxctl/amxctrl.toml)")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing file")

	return cmd
}

func newConfigShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with passwords masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(viper.New(), app.global.configFile)
			if err != nil {
				return err
			}

			data, err := config.Encoded(loaded.Settings.Masked())
			if err != nil {
				return err
			}

			source := loaded.File
			if source == "" {
				source = "defaults"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", source, data)
			return err
		},
	}
}

func newConfigEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <password>",
		Short: "Print the obfuscated form of a password for amxctrl.toml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.Encode(args[0]))
			return err
		},
	}
}

func newConfigSecretCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Store passwords outside amxctrl.toml",
	}

	cmd.AddCommand(newConfigSecretSetCmd(app), newConfigSecretRemoveCmd(app))

	return cmd
}

func newConfigSecretSetCmd(app *app) *cobra.Command {
	var key string
	var value string

	cmd := &cobra.Command{
		Use:       "set <admin|bpm>",
		Short:     "Store the password of a section in the secret store",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: secretSections,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = config.SecretKey(args[0])
			}

			store, err := app.secretStore()
			if err != nil {
				return err
			}
			if err := store.Put(cmd.Context(), key, value); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\nSet [%s] password_ref = %q in amxctrl.toml to use it\n", key, args[0], key)
			return err
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "secret store key (default: amxctl/<section>/password)")
	cmd.Flags().StringVar(&value, "value", "", "password to store")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newConfigSecretRemoveCmd(app *app) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:       "rm <admin|bpm>",
		Short:     "Remove the stored password of a section",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: secretSections,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				key = config.SecretKey(args[0])
			}

			store, err := app.secretStore()
			if err != nil {
				return err
			}
			return store.Delete(cmd.Context(), key)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "secret store key (default: amxctl/<section>/password)")

	return cmd
}
