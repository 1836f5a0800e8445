// Package config resolves imagelink settings from flags, environment
// variables (IMAGELINK_*), an optional YAML config file and defaults, in
// that order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lucas-albers-lz4/imagelink/pkg/debug"
	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
)

// Setting keys. Flags use the same names.
const (
	KeyBase        = "base"
	KeyOutput      = "output"
	KeyLayout      = "layout"
	KeyFields      = "fields"
	KeyMinSize     = "min-size"
	KeyNoExecute   = "no-execute"
	KeyAbsolute    = "absolute"
	KeyForce       = "force"
	KeyRecursive   = "recursive"
	KeyInclude     = "include"
	KeyList        = "list"
	KeyMetricsFile = "metrics-file"
	KeyLogLevel    = "log-level"
)

const (
	// EnvPrefix is prepended to upper-cased keys, dashes becoming underscores.
	EnvPrefix = "IMAGELINK"
	// FileName is looked up in the home and working directories.
	FileName = ".imagelink.yaml"

	defaultMinSize = 100 * 1024
)

// Config is the resolved set of settings.
type Config struct {
	Base        string
	Output      string
	Layout      string
	Fields      []string
	MinSize     int64
	NoExecute   bool
	Absolute    bool
	Force       bool
	Recursive   bool
	Include     []string
	List        []string
	MetricsFile string
	LogLevel    string
	// File is the config file that was read, if any.
	File string
}

// New returns a viper instance reading files from fs, with defaults and
// environment lookup configured.
func New(fs afero.Fs) *viper.Viper {
	v := viper.New()
	if fs != nil {
		v.SetFs(fs)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyBase, "")
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyLayout, "")
	v.SetDefault(KeyFields, []string{})
	v.SetDefault(KeyMinSize, defaultMinSize)
	v.SetDefault(KeyNoExecute, false)
	v.SetDefault(KeyAbsolute, false)
	v.SetDefault(KeyForce, false)
	v.SetDefault(KeyRecursive, false)
	v.SetDefault(KeyInclude, []string{})
	v.SetDefault(KeyList, []string{})
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyLogLevel, "info")
	return v
}

// BindFlags makes changed flags override every other source.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	return nil
}

// FindFile returns the config file to read: explicit when given (it must
// exist as a regular file), else FileName in home, else FileName in workDir.
// Directories are never picked up. An empty result
// means no config file.
func FindFile(fs afero.Fs, explicit, home, workDir string) (string, error) {
	if explicit != "" {
		ok, err := fileutil.FileExists(fileutil.NewAferoFS(fs), explicit)
		if err != nil {
			return "", fmt.Errorf("failed to check config file %s: %w", explicit, err)
		}
		if !ok {
			return "", fmt.Errorf("config file %s does not exist or is not a regular file", explicit)
		}
		return explicit, nil
	}
	for _, dir := range []string{home, workDir} {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, FileName)
		if ok, _ := fileutil.FileExists(fileutil.NewAferoFS(fs), candidate); ok {
			return candidate, nil
		}
	}
	return "", nil
}

// ReadFile validates path against the schema and loads it into v.
func ReadFile(v *viper.Viper, fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := Validate(path, data); err != nil {
		return err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	debug.Printf("loaded config file %s", path)
	return nil
}

// Resolve reads the effective settings out of v.
func Resolve(v *viper.Viper) *Config {
	return &Config{
		Base:        v.GetString(KeyBase),
		Output:      v.GetString(KeyOutput),
		Layout:      v.GetString(KeyLayout),
		Fields:      splitList(v.GetStringSlice(KeyFields)),
		MinSize:     v.GetInt64(KeyMinSize),
		NoExecute:   v.GetBool(KeyNoExecute),
		Absolute:    v.GetBool(KeyAbsolute),
		Force:       v.GetBool(KeyForce),
		Recursive:   v.GetBool(KeyRecursive),
		Include:     trimList(v.GetStringSlice(KeyInclude)),
		List:        trimList(v.GetStringSlice(KeyList)),
		MetricsFile: v.GetString(KeyMetricsFile),
		LogLevel:    v.GetString(KeyLogLevel),
		File:        v.ConfigFileUsed(),
	}
}

// splitList also splits elements on commas, which is how field lists arrive
// from environment variables.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		out = append(out, trimList(strings.Split(s, ","))...)
	}
	return out
}

// trimList drops blank elements. Patterns and paths may contain commas, so
// they are never split.
func trimList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
