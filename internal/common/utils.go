package common

import "strings"

// FirstNonBlank returns the first value that is not empty after trimming
// whitespace, trimmed. It returns "" if every value is blank.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
