// Package template renders {{key}} placeholder templates for text reports.
// Placeholders with no matching key are left verbatim, so text/template is
// not usable here.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([\w.]+)\s*\}\}`)

// Render substitutes {{key}} placeholders with values from data. Unknown
// keys are kept as-is.
func Render(templateStr string, data map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(templateStr, func(match string) string {
		key := strings.TrimSpace(placeholderPattern.FindStringSubmatch(match)[1])

		value, ok := data[key]
		if !ok {
			return match
		}

		return fmt.Sprintf("%v", value)
	})
}

// Placeholders returns the placeholder keys referenced by a template.
func Placeholders(templateStr string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(templateStr, -1)

	keys := make([]string, 0, len(matches))
	for _, match := range matches {
		keys = append(keys, match[1])
	}

	return keys
}
