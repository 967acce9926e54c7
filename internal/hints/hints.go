// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"fmt"
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config and the user config location among the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-mdext") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForStage returns hints for stage resolution errors.
func ForStage() string {
	return format("run 'mdext doctor' to check every stack, 'mdext config' to list them")
}

// ForSetting returns hints for malformed or rejected --set values.
func ForSetting() string {
	return format("use key=value with a YAML value, e.g. --set tab_width=2 or --set '+skip_filters=[Emphasis]'")
}

// ForWorkers returns hints for out-of-range worker counts.
func ForWorkers(maxWorkers int) string {
	return format(fmt.Sprintf("use 0 for auto, or 1 to %d", maxWorkers))
}

// ForOutputDirectory returns hints for output write errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForExtension returns hints for inputs without a markdown extension.
func ForExtension(exts []string) string {
	if len(exts) == 0 {
		return ""
	}
	return format("rename the file, or pipe it: mdext - < file (accepted: " + strings.Join(exts, ", ") + ")")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
