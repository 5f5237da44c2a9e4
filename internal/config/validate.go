package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigError represents a bad or missing configuration value, with file and
// field context where available.
type ConfigError struct {
	FilePath string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	switch {
	case e.FilePath != "" && e.Field != "":
		return fmt.Sprintf("%s: field '%s': %s", e.FilePath, e.Field, e.Message)
	case e.FilePath != "":
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	case e.Field != "":
		return fmt.Sprintf("field '%s': %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// ValidateYAMLSyntax checks that the file at path is well-formed YAML.
// A missing or empty file is fine; defaults apply.
func ValidateYAMLSyntax(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ConfigError{FilePath: path, Message: err.Error()}
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return &ConfigError{FilePath: path, Message: cleanYAMLError(err.Error())}
	}
	return nil
}

// cleanYAMLError strips the "yaml: " prefix yaml.v3 puts on every message.
func cleanYAMLError(msg string) string {
	return strings.TrimPrefix(msg, "yaml: ")
}

// Validate checks a Config for structural problems beyond what unmarshaling
// catches: struct tags via validator, channel id uniqueness, the default
// channel being configured, and pattern syntax.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				return &ConfigError{
					Field:   toSnakeCase(fe.Field()),
					Message: formatFieldError(fe),
				}
			}
		}
		return &ConfigError{Message: err.Error()}
	}

	seen := make(map[string]bool, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		if seen[ch.ID] {
			return &ConfigError{Field: "channels", Message: fmt.Sprintf("duplicate channel id %q", ch.ID)}
		}
		seen[ch.ID] = true

		if !IsFileSafe(ch.ID) {
			return &ConfigError{Field: "channels", Message: fmt.Sprintf("channel id %q is not usable as a file name", ch.ID)}
		}
		if err := validatePattern(ch.Branch, fmt.Sprintf("channels[%s].branch", ch.ID), 0); err != nil {
			return err
		}
	}

	if !seen[cfg.DefaultChannel] {
		return &ConfigError{Field: "default_channel", Message: fmt.Sprintf("channel %q is not declared in 'channels'", cfg.DefaultChannel)}
	}

	if err := validatePattern(cfg.BranchIssuePattern, "branch_issue_pattern", 1); err != nil {
		return err
	}
	if err := validatePattern(cfg.BranchVersionPattern, "branch_version_pattern", 1); err != nil {
		return err
	}

	return nil
}

// validatePattern checks a slash-encased regex config value. wantGroups > 0
// requires the pattern to be a regex with exactly that many capture groups;
// channel branch values may also be literals, so they pass wantGroups 0.
func validatePattern(value, field string, wantGroups int) error {
	if value == "" {
		return nil
	}

	inner, ok := AsRegexPattern(value)
	if !ok {
		if wantGroups > 0 {
			return &ConfigError{Field: field, Message: fmt.Sprintf("must be a regex encased in slashes, found %q", value)}
		}
		// Literal branch name, nothing to compile.
		return nil
	}

	re, err := regexp.Compile(inner)
	if err != nil {
		return &ConfigError{Field: field, Message: fmt.Sprintf("invalid regex %q: %v", inner, err)}
	}
	if wantGroups > 0 && re.NumSubexp() != wantGroups {
		return &ConfigError{Field: field, Message: fmt.Sprintf("regex must have exactly %d capture group(s), found %d", wantGroups, re.NumSubexp())}
	}
	return nil
}

// AsRegexPattern returns the inner pattern if value is encased in slashes.
// Non-encased values are treated as literals by the callers.
func AsRegexPattern(value string) (string, bool) {
	if len(value) < 2 || !strings.HasPrefix(value, "/") || !strings.HasSuffix(value, "/") {
		return "", false
	}
	return value[1 : len(value)-1], true
}

// IsFileSafe rejects names that would escape their directory or be unusable
// as a file name stem, such as channel ids and entry names.
func IsFileSafe(id string) bool {
	if id == "" || id == "." || id == ".." {
		return false
	}
	return !strings.ContainsAny(id, "/\\:")
}

// formatFieldError renders a validator tag failure for a config field.
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s element(s)", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// toSnakeCase converts a CamelCase field name to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}
