package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/lshclust/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from the domain package.
type DefaultConfigValues struct {
	Delimiter        string
	LabelSeparator   string
	Rows             int
	Bands            int
	Seed             int64
	Family           string
	BucketWidth      float64
	ExpectedClusters int
	MeanPolicy       string
	Format           string
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		Delimiter:        domain.DefaultDelimiter,
		LabelSeparator:   domain.DefaultLabelSeparator,
		Rows:             domain.DefaultRows,
		Bands:            domain.DefaultBands,
		Seed:             domain.DefaultSeed,
		Family:           string(domain.HashFamilyHyperplane),
		BucketWidth:      domain.DefaultBucketWidth,
		ExpectedClusters: domain.DefaultExpectedClusters,
		MeanPolicy:       string(domain.MeanPolicySnapshot),
		Format:           string(domain.OutputFormatText),
	}
}

// GenerateDefaultConfigTOML renders the default config template
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}
	return buf.String(), nil
}

// LoadDefaultConfigFromTOML parses the rendered default config
func LoadDefaultConfigFromTOML() (*Config, error) {
	configTOML, err := GenerateDefaultConfigTOML()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal([]byte(configTOML), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
