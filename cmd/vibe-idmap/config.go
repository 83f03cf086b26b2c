package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configKeys are the settings the map and alter commands read.
var configKeys = []string{
	"map.transcript_type",
	"map.extra",
	"alter.match_column",
	"alter.map_column",
	"log.level",
}

func newConfigCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage vibe-idmap configuration",
		Long:  "Show, get, or set default option values. Config is stored in ~/" + configName + ".yaml.",
		Example: `  vibe-idmap config                                  # show all config
  vibe-idmap config set map.transcript_type transcript
  vibe-idmap config set alter.map_column 2
  vibe-idmap config get map.extra`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(stdout)
		},
	}

	cmd.AddCommand(newConfigSetCmd(stdout))
	cmd.AddCommand(newConfigGetCmd(stdout))

	return cmd
}

func newConfigSetCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(stdout, args[0], args[1])
		},
	}
}

func newConfigGetCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(stdout, args[0])
		},
	}
}

func runConfigShow(stdout io.Writer) error {
	settings := make(map[string]any)
	for _, key := range configKeys {
		settings[key] = viper.Get(key)
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Fprint(stdout, string(out))
	return nil
}

func runConfigSet(stdout io.Writer, key, value string) error {
	if !knownKey(key) {
		return usageErrorf("unknown config key %q", key)
	}

	// Column numbers are stored as integers.
	if n, err := strconv.Atoi(value); err == nil {
		viper.Set(key, n)
	} else {
		viper.Set(key, value)
	}

	cfgFile := viper.ConfigFileUsed()
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, configName+".yaml")
	}

	if err := viper.WriteConfigAs(cfgFile); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(stdout, "Set %s = %s in %s\n", key, value, cfgFile)
	return nil
}

func runConfigGet(stdout io.Writer, key string) error {
	val := viper.Get(key)
	if val == nil {
		return fmt.Errorf("key %q is not set", key)
	}
	fmt.Fprintln(stdout, val)
	return nil
}

func knownKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}
