package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/lshclust/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() *ErrorCategorizerImpl {
	return &ErrorCategorizerImpl{patterns: initializeErrorPatterns()}
}

// initializeErrorPatterns lists message fragments per category, checked in order
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"deadline",
			"context canceled",
			"timed out",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"configuration",
			"toml",
			"must be > 0",
			"exceeds",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no files found",
			"file not found",
			"no such file",
			"cannot access",
			"permission denied",
			"row ",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"cannot create",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"hash",
			"merge",
			"cluster",
		}},
	}
}

// Categorize determines the category of an error. Domain error codes take
// precedence over message patterns.
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	category := ec.categoryFromCode(err)
	if category == "" {
		errMsg := strings.ToLower(err.Error())
		for _, cp := range ec.patterns {
			if containsAnyPattern(errMsg, cp.patterns) {
				category = cp.category
				break
			}
		}
	}
	if category == "" {
		return &domain.CategorizedError{
			Category: domain.ErrorCategoryUnknown,
			Message:  err.Error(),
			Original: err,
		}
	}

	return &domain.CategorizedError{
		Category: category,
		Message:  ec.getCategoryMessage(category),
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categoryFromCode(err error) domain.ErrorCategory {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return domain.ErrorCategoryTimeout
	case domain.IsConfigurationError(err):
		return domain.ErrorCategoryConfig
	case domain.IsFormatError(err),
		domain.HasErrorCode(err, domain.ErrCodeInvalidInput),
		domain.HasErrorCode(err, domain.ErrCodeFileNotFound):
		return domain.ErrorCategoryInput
	case domain.HasErrorCode(err, domain.ErrCodeOutputError),
		domain.HasErrorCode(err, domain.ErrCodeUnsupportedFormat):
		return domain.ErrorCategoryOutput
	case domain.HasErrorCode(err, domain.ErrCodeAnalysisError):
		return domain.ErrorCategoryProcessing
	}
	return ""
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the input files exist and are readable",
			"Every data row needs the same number of numeric columns",
			"Use --label-column=false if the first column is numeric data",
			"Use --header if the files start with a header row",
		},
		domain.ErrorCategoryConfig: {
			"Rows, bands and --clusters must all be positive",
			"--clusters cannot exceed the number of groups LSH found; try more bands or fewer rows",
			"Try: lshclust init to generate a valid config file",
			"Check for syntax errors in .lshclust.toml",
		},
		domain.ErrorCategoryTimeout: {
			"Increase performance.timeout_seconds or pass --timeout 0",
			"Reduce rows*bands to lower hashing cost",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions for the output path",
			"Ensure the output directory exists and is writable",
		},
		domain.ErrorCategoryProcessing: {
			"Run with --verbose for stage by stage logging",
			"Try a different --seed to rule out an unlucky projection",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to read input data",
		domain.ErrorCategoryConfig:     "Invalid configuration",
		domain.ErrorCategoryTimeout:    "Clustering timed out or was cancelled",
		domain.ErrorCategoryOutput:     "Failed to write output",
		domain.ErrorCategoryProcessing: "Error during clustering",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}

var _ domain.ErrorCategorizer = (*ErrorCategorizerImpl)(nil)
