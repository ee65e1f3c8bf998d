package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/staffclean-cli/internal/cleaner"
	"github.com/KaramelBytes/staffclean-cli/internal/table"
	"github.com/KaramelBytes/staffclean-cli/internal/utils"
)

// DirName is the per-user configuration directory under $HOME.
const DirName = ".staffclean"

// Global configuration structure.
type Global struct {
	InputPath  string `mapstructure:"input_path" yaml:"input_path"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	// Delimiter is "", "comma", "tab" or "semicolon"; "" picks by extension.
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DateLayout         string `mapstructure:"date_layout" yaml:"date_layout"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	IDBase                 int64    `mapstructure:"id_base" yaml:"id_base"`
	OutlierThreshold       float64  `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	WatchDepartments       []string `mapstructure:"watch_departments" yaml:"watch_departments"`
	SalaryPlaceholders     []string `mapstructure:"salary_placeholders" yaml:"salary_placeholders"`
	DepartmentPlaceholders []string `mapstructure:"department_placeholders" yaml:"department_placeholders"`
	UnknownDepartment      string   `mapstructure:"unknown_department" yaml:"unknown_department"`

	// Query service
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	DefaultTopN int    `mapstructure:"default_top_n" yaml:"default_top_n"`

	// Cleaning journal (SQLite)
	JournalPath    string `mapstructure:"journal_path" yaml:"journal_path"`
	JournalEnabled bool   `mapstructure:"journal_enabled" yaml:"journal_enabled"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Dir returns ~/.staffclean.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Path returns cfgFile, or ~/.staffclean/config.yaml when it is empty.
func Path(cfgFile string) (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.staffclean/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := Path(cfgFile)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	def := cleaner.DefaultOptions()
	v.SetDefault("input_path", filepath.Join("data", "manipulation_data.csv"))
	v.SetDefault("output_path", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("date_layout", table.DateLayout)
	v.SetDefault("thousands_separator", "")
	v.SetDefault("id_base", def.IDBase)
	v.SetDefault("outlier_threshold", def.OutlierThreshold)
	v.SetDefault("watch_departments", def.WatchDepartments)
	v.SetDefault("salary_placeholders", def.Placeholders[0].Tokens)
	v.SetDefault("department_placeholders", def.Placeholders[1].Tokens)
	v.SetDefault("unknown_department", def.UnknownDepartment)
	v.SetDefault("listen_addr", "127.0.0.1:5000")
	v.SetDefault("default_top_n", 5)
	v.SetDefault("journal_path", "")
	v.SetDefault("journal_enabled", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is loaded into the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STAFFCLEAN")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.WatchDepartments = SplitList(c.WatchDepartments...)
	c.SalaryPlaceholders = SplitList(c.SalaryPlaceholders...)
	c.DepartmentPlaceholders = SplitList(c.DepartmentPlaceholders...)
	// Resolve journal_path default: ~/.staffclean/journal.db
	if c.JournalPath == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.JournalPath = filepath.Join(dir, "journal.db")
	}
	p, err := utils.ExpandHome(c.JournalPath)
	if err != nil {
		return nil, err
	}
	c.JournalPath = p
	return &c, nil
}

// SplitList accepts both YAML lists and comma-separated values, dropping
// blank entries.
func SplitList(in ...string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// ParseThousandsSeparator maps the thousands_separator setting to a rune;
// "" yields 0 (none).
func ParseThousandsSeparator(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("thousands_separator must be a single character: %q", s)
	}
	if err := cleaner.ValidateThousandsSeparator(r); err != nil {
		return 0, fmt.Errorf("invalid thousands_separator: %w", err)
	}
	return r, nil
}

// CleanerOptions converts the configuration to pipeline options.
func (c *Global) CleanerOptions() (cleaner.Options, error) {
	opt := cleaner.Options{
		DateLayout:        c.DateLayout,
		UnknownDepartment: c.UnknownDepartment,
		IDBase:            c.IDBase,
		OutlierThreshold:  c.OutlierThreshold,
		WatchDepartments:  append([]string(nil), c.WatchDepartments...),
	}
	sep, err := ParseThousandsSeparator(c.ThousandsSeparator)
	if err != nil {
		return cleaner.Options{}, err
	}
	opt.ThousandsSeparator = sep
	if c.OutlierThreshold <= 0 {
		return cleaner.Options{}, fmt.Errorf("outlier_threshold must be positive: %v", c.OutlierThreshold)
	}
	if len(c.SalaryPlaceholders) > 0 {
		opt.Placeholders = append(opt.Placeholders, cleaner.PlaceholderRule{Column: table.ColSalary, Tokens: c.SalaryPlaceholders})
	}
	if len(c.DepartmentPlaceholders) > 0 {
		opt.Placeholders = append(opt.Placeholders, cleaner.PlaceholderRule{
			Column: table.ColDepartment, Tokens: c.DepartmentPlaceholders, Replacement: c.UnknownDepartment,
		})
	}
	return opt, nil
}

// ReadOptions converts the delimiter setting to table read options.
func (c *Global) ReadOptions() (table.ReadOptions, error) {
	d, err := table.ParseDelimiter(c.Delimiter)
	if err != nil {
		return table.ReadOptions{}, err
	}
	return table.ReadOptions{Delimiter: d}, nil
}

// OutputFor returns the configured output path, or <input>_cleaned<ext>
// next to the input when none is set.
func (c *Global) OutputFor(input string) string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_cleaned" + ext
}
