package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/lshclust/domain"
)

// ConfigFileName is the dedicated configuration file discovered next to the data
const ConfigFileName = ".lshclust.toml"

// EnvPrefix prefixes environment overrides, e.g. LSHCLUST_LSH_ROWS
const EnvPrefix = "LSHCLUST"

// supportedConfigFiles lists discoverable files in order of precedence
var supportedConfigFiles = []string{
	ConfigFileName,
	".lshclust.yaml",
	".lshclust.yml",
	".lshclust.json",
}

// configKeys lists every settable key, used to bind environment variables
var configKeys = []string{
	"input.paths", "input.delimiter", "input.has_header", "input.label_column", "input.dim", "input.label_separator",
	"lsh.rows", "lsh.bands", "lsh.seed", "lsh.family", "lsh.bucket_width", "lsh.center",
	"merge.expected_clusters", "merge.mean_policy", "merge.assign_untouched",
	"output.format", "output.show_details", "output.path",
	"performance.workers", "performance.timeout_seconds",
}

// Loader resolves configuration with the priority
// explicit file > discovered file > environment > defaults.
type Loader struct {
	// LookupEnv reads environment variables; nil means os.LookupEnv
	LookupEnv func(key string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load loads configPath if given, otherwise the first supported file found
// walking up from startDir. The result is validated.
func (l *Loader) Load(configPath, startDir string) (*Config, string, error) {
	cfg := DefaultConfig()
	if err := l.applyEnv(cfg); err != nil {
		return nil, "", err
	}

	if configPath == "" && startDir != "" {
		if found, err := FindConfigFile(startDir); err == nil {
			configPath = found
		}
	}

	if configPath != "" {
		if err := decodeFile(configPath, cfg); err != nil {
			return nil, "", err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, configPath, err
	}
	return cfg, configPath, nil
}

// FindConfigFile walks up the directory tree from startDir looking for a supported file
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, name := range supportedConfigFiles {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// GetSupportedConfigFiles returns the discoverable file names in order of precedence
func GetSupportedConfigFiles() []string {
	out := make([]string, len(supportedConfigFiles))
	copy(out, supportedConfigFiles)
	return out
}

// decodeFile overlays the file onto cfg. Keys absent from the file keep their current value.
func decodeFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewConfigError(fmt.Sprintf("config file not found: %s", path), err)
		}
		return domain.NewConfigError(fmt.Sprintf("cannot access config file %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
		}
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return domain.NewConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
		}
	case ".yaml", ".yml", ".json":
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return domain.NewConfigError(fmt.Sprintf("failed to read config file %s", path), err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return domain.NewConfigError(fmt.Sprintf("failed to unmarshal config file %s", path), err)
		}
	default:
		return domain.NewConfigurationError("unsupported config file type %q (use .toml, .yaml, .yml or .json)", filepath.Ext(path))
	}
	return nil
}

// applyEnv overlays LSHCLUST_* environment variables onto cfg
func (l *Loader) applyEnv(cfg *Config) error {
	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	v := viper.New()
	found := false
	for _, key := range configKeys {
		name := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if val, ok := lookup(name); ok {
			if key == "input.paths" {
				v.Set(key, strings.Split(val, string(os.PathListSeparator)))
			} else {
				v.Set(key, val)
			}
			found = true
		}
	}
	if !found {
		return nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return domain.NewConfigError("invalid "+EnvPrefix+"_* environment value", err)
	}
	return nil
}
