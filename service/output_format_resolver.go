package service

import (
	"github.com/ludo-technologies/lshclust/domain"
)

// OutputFormatResolver resolves output format and file extension from flags.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine evaluates format flags and returns the selected format and extension.
// At most one of json/yaml/csv may be true; if none are, the format is text.
func (r *OutputFormatResolver) Determine(json, yaml, csv bool) (domain.OutputFormat, string, error) {
	formatCount := 0
	format := domain.OutputFormatText
	ext := "txt"

	if json {
		formatCount++
		format, ext = domain.OutputFormatJSON, "json"
	}
	if yaml {
		formatCount++
		format, ext = domain.OutputFormatYAML, "yaml"
	}
	if csv {
		formatCount++
		format, ext = domain.OutputFormatCSV, "csv"
	}

	if formatCount > 1 {
		return "", "", domain.NewInvalidInputError("only one of --json, --yaml, --csv can be specified", nil)
	}
	return format, ext, nil
}

// ExtensionFor returns the conventional file extension of a format
func (r *OutputFormatResolver) ExtensionFor(format domain.OutputFormat) string {
	switch format {
	case domain.OutputFormatJSON:
		return "json"
	case domain.OutputFormatYAML:
		return "yaml"
	case domain.OutputFormatCSV:
		return "csv"
	default:
		return "txt"
	}
}
