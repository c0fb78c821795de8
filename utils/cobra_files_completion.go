package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// CompleteFilesByExtension suggests files matching the given extensions,
// optionally including rotated variants (gc.log.0, gc.log.1, ...).
func CompleteFilesByExtension(extensions []string, includeRotated bool) func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		dir := filepath.Dir(toComplete)
		prefix := filepath.Base(toComplete)

		if !strings.Contains(toComplete, "/") {
			dir = "."
			prefix = toComplete
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}

		var suggestions []string
		for _, entry := range entries {
			name := entry.Name()

			if strings.HasPrefix(name, ".") || !strings.HasPrefix(name, prefix) {
				continue
			}

			suggestion := name
			if dir != "." {
				suggestion = filepath.Join(dir, name)
			}

			if entry.IsDir() {
				suggestions = append(suggestions, suggestion+"/")
			} else if matchesExtension(name, extensions, includeRotated) {
				suggestions = append(suggestions, suggestion)
			}
		}

		slices.Sort(suggestions)
		return suggestions, cobra.ShellCompDirectiveNoFileComp
	}
}

func matchesExtension(filename string, extensions []string, includeRotated bool) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}

		if includeRotated {
			pattern := regexp.QuoteMeta(ext) + `\.\d+$`
			if matched, _ := regexp.MatchString(pattern, filename); matched {
				return true
			}
		}
	}
	return false
}
