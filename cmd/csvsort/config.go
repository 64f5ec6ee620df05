package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lanrat/csvsort"
)

// envPrefix is prepended to every configuration key to form its environment
// variable, with dashes turned into underscores: buffer-mb is CSVSORT_BUFFER_MB.
const envPrefix = "CSVSORT"

// cliConfig is everything the commands can be configured with. Values come
// from flags, then CSVSORT_* environment variables, then csvsort.yaml.
type cliConfig struct {
	Key       string  `mapstructure:"key"`
	KeyIndex  int     `mapstructure:"key-index"`
	Order     string  `mapstructure:"order"`
	BufferMB  float64 `mapstructure:"buffer-mb"`
	TempDir   string  `mapstructure:"temp-dir"`
	Suffix    string  `mapstructure:"suffix"`
	MaxFanIn  int     `mapstructure:"max-fan-in"`
	RunFormat string  `mapstructure:"run-format"`
	Delimiter string  `mapstructure:"delimiter"`
	Jobs      int     `mapstructure:"jobs"`
	LogLevel  string  `mapstructure:"log-level"`
	LogFile   string  `mapstructure:"log-file"`
}

func defaultCLIConfig() cliConfig {
	d := csvsort.DefaultConfig()
	return cliConfig{
		KeyIndex:  -1,
		Order:     d.Order.String(),
		BufferMB:  d.BufferSizeMB,
		TempDir:   d.TempFilesDir,
		Suffix:    d.OutputSuffix,
		MaxFanIn:  d.MaxFanIn,
		RunFormat: d.RunFormat,
		Delimiter: string(d.Delimiter),
		Jobs:      1,
		LogLevel:  "info",
	}
}

// loadConfig merges flags, environment and the config file into a cliConfig.
// configFile is read when set; otherwise ./csvsort.yaml is read if present.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*cliConfig, error) {
	cfg := defaultCLIConfig()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("csvsort")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	if err := v.BindPFlags(flags); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}

// sorterConfig converts the CLI settings to the engine configuration
func (c *cliConfig) sorterConfig() (*csvsort.Config, error) {
	order, err := csvsort.ParseOrder(c.Order)
	if err != nil {
		return nil, err
	}
	delim, err := parseDelimiter(c.Delimiter)
	if err != nil {
		return nil, err
	}
	return &csvsort.Config{
		BufferSizeMB:   c.BufferMB,
		Order:          order,
		OutputSuffix:   c.Suffix,
		TempFilesDir:   c.TempDir,
		MaxFanIn:       c.MaxFanIn,
		RunFormat:      c.RunFormat,
		Delimiter:      delim,
		FileBufferSize: csvsort.DefaultConfig().FileBufferSize,
	}, nil
}

// column returns the sort column; exactly one of key and key-index must be set
func (c *cliConfig) column() (csvsort.Column, error) {
	switch {
	case c.Key != "" && c.KeyIndex >= 0:
		return csvsort.Column{}, errors.New("use either --key or --key-index, not both")
	case c.Key != "":
		return csvsort.ColumnName(c.Key), nil
	case c.KeyIndex >= 0:
		return csvsort.ColumnIndex(c.KeyIndex), nil
	default:
		return csvsort.Column{}, errors.New("a sort column is required: set --key or --key-index")
	}
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, &csvsort.ConfigError{Field: "Delimiter", Value: s, Reason: "must be a single character"}
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
