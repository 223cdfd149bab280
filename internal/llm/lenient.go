package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tunde-oladipo/casefile-audit/internal/fields"
)

var (
	reBoldField  = regexp.MustCompile(`^\*\*(.+?)\*\*:\s*(.+)`)
	rePlainField = regexp.MustCompile(`^(.+?):\s*(.+)`)
)

// ParseModelOutput turns raw collaborator output into a field map. It strips
// markdown code fences, tries strict JSON first, and falls back to line-based
// "key: value" scraping for unstructured responses. Nothing usable yields an
// empty map, not an error.
func ParseModelOutput(content string) fields.Map {
	content = stripFences(content)

	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		return fields.FromAny(obj)
	}

	return scrapeLines(content)
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// scrapeLines matches "**Field:** value" and "Field: value" lines. Keys are
// normalized to snake_case; null/N/A values are dropped.
func scrapeLines(content string) fields.Map {
	m := fields.Map{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		match := reBoldField.FindStringSubmatch(line)
		if match == nil {
			match = rePlainField.FindStringSubmatch(line)
		}
		if match == nil {
			continue
		}
		key := strings.Trim(strings.TrimSpace(match[1]), "*")
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		value := strings.TrimSpace(strings.Trim(strings.TrimSpace(match[2]), `*"'`))
		value = strings.TrimSuffix(value, ",")
		if value == "" || strings.EqualFold(value, "null") || strings.EqualFold(value, "n/a") {
			continue
		}
		m[key] = value
	}
	return m
}
