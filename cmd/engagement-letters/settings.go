// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/engagement-letters/internal/settings"
	"github.com/pdiddy/engagement-letters/pkg/types"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change the user settings",
	Long: `Settings reads and updates the user settings file shared with the web UI.
Use subcommands to list the settings, set one value, or print the fee
schedule the rollover will apply.`,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the user settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		list, err := settings.Load(cfg.Paths.SettingsFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-32s  %-6s  %s\n", "Setting", "Type", "Value")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		for _, s := range list {
			value := string(s.Value)
			if v, ok := settings.String(list, s.ConfigName); ok {
				value = v
			}
			fmt.Fprintf(out, "%-32s  %-6s  %s\n", s.ConfigName, s.Type, value)
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set NAME VALUE",
	Short: "Set one user setting",
	Long: `Set replaces the value of an existing setting. Number settings take an
integer; list settings take a JSON list of {"name", "rate"} objects.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path := cfg.Paths.SettingsFile
		current, err := settings.Load(path)
		if err != nil {
			return err
		}
		name, raw := args[0], args[1]

		var target *types.Setting
		for i := range current {
			if current[i].ConfigName == name {
				target = &current[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("unknown setting %q", name)
		}

		value := json.RawMessage(raw)
		if target.Type == types.SettingString {
			data, err := json.Marshal(raw)
			if err != nil {
				return err
			}
			value = data
		} else if !json.Valid(value) {
			return fmt.Errorf("setting %s: value is not valid JSON", name)
		}

		merged, err := settings.Merge(current, []types.Setting{{ConfigName: name, Type: target.Type, Value: value}})
		if err != nil {
			return err
		}
		if _, err := settings.RateOptions(merged); err != nil {
			return err
		}
		if err := settings.Save(path, merged); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s in %s\n", name, path)
		return nil
	},
}

var settingsRatesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the fee schedule used by rollover",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts, err := settings.LoadRateOptions(cfg.Paths.SettingsFile)
		if err != nil {
			return err
		}
		schedule := make(map[types.RateKey]any, len(types.RateKeys))
		for _, key := range types.RateKeys {
			switch key {
			case types.CompliancePartnerRates, types.ConsultingPartnerRates:
				schedule[key] = opts.Partners(key)
			default:
				schedule[key] = opts.Range(key)
			}
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(schedule)
	},
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsRatesCmd)

	rootCmd.AddCommand(settingsCmd)
}
