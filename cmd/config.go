package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/staffclean-cli/internal/config"
	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set staffclean configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("input_path: %s\n", cfg.InputPath)
		fmt.Printf("output_path: %s\n", cfg.OutputFor(cfg.InputPath))
		if cfg.Delimiter != "" {
			fmt.Printf("delimiter: %s\n", cfg.Delimiter)
		}
		fmt.Printf("date_layout: %s\n", cfg.DateLayout)
		if cfg.ThousandsSeparator != "" {
			fmt.Printf("thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		fmt.Printf("id_base: %d\n", cfg.IDBase)
		fmt.Printf("outlier_threshold: %s\n", table.FormatFloat(cfg.OutlierThreshold))
		fmt.Printf("watch_departments: %s\n", strings.Join(cfg.WatchDepartments, ","))
		fmt.Printf("salary_placeholders: %s\n", strings.Join(cfg.SalaryPlaceholders, ","))
		fmt.Printf("department_placeholders: %s\n", strings.Join(cfg.DepartmentPlaceholders, ","))
		fmt.Printf("unknown_department: %s\n", cfg.UnknownDepartment)
		fmt.Printf("listen_addr: %s\n", cfg.ListenAddr)
		fmt.Printf("default_top_n: %d\n", cfg.DefaultTopN)
		fmt.Printf("journal_enabled: %t\n", cfg.JournalEnabled)
		fmt.Printf("journal_path: %s\n", cfg.JournalPath)
		fmt.Printf("log_level: %s\n", cfg.LogLevel)
		fmt.Printf("log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "input_path":
		c.InputPath = val
	case "output_path":
		c.OutputPath = val
	case "delimiter":
		if _, err := table.ParseDelimiter(val); err != nil {
			return fmt.Errorf("invalid delimiter: %s (use comma, tab or semicolon)", val)
		}
		c.Delimiter = val
	case "date_layout":
		c.DateLayout = val
	case "thousands_separator":
		if _, err := cfgpkg.ParseThousandsSeparator(val); err != nil {
			return err
		}
		c.ThousandsSeparator = val
	case "id_base":
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for id_base: %w", err)
		}
		c.IDBase = i
	case "outlier_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid positive float for outlier_threshold: %v", val)
		}
		c.OutlierThreshold = f
	case "watch_departments":
		c.WatchDepartments = cfgpkg.SplitList(val)
	case "salary_placeholders":
		c.SalaryPlaceholders = cfgpkg.SplitList(val)
	case "department_placeholders":
		c.DepartmentPlaceholders = cfgpkg.SplitList(val)
	case "unknown_department":
		if strings.TrimSpace(val) == "" {
			return fmt.Errorf("unknown_department must not be blank")
		}
		c.UnknownDepartment = val
	case "listen_addr":
		c.ListenAddr = val
	case "default_top_n":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid positive int for default_top_n: %v", val)
		}
		c.DefaultTopN = i
	case "journal_path":
		c.JournalPath = val
	case "journal_enabled":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for journal_enabled: %w", err)
		}
		c.JournalEnabled = b
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "console", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
