package capability

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// formatMetadata renders ticket metadata as sorted "key: value" lines.
func formatMetadata(metadata map[string]string) string {
	if len(metadata) == 0 {
		return "(none)"
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, metadata[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatRecords renders fetched records as a bulleted list for prompts.
func formatRecords(records []models.Record) string {
	if len(records) == 0 {
		return "(none)"
	}

	var b strings.Builder
	for _, record := range records {
		keys := make([]string, 0, len(record))
		for k := range record {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, record[k]))
		}
		fmt.Fprintf(&b, "- %s\n", strings.Join(parts, "; "))
	}
	return strings.TrimRight(b.String(), "\n")
}
