package domain

import (
	"regexp"
	"strings"
)

var (
	splitCaseAcronym = regexp.MustCompile(`(\P{Ll})(\P{Ll}\p{Ll})`)
	splitCaseWord    = regexp.MustCompile(`(\p{Ll})(\P{Ll})`)
)

// SplitCase splits a camel or pascal cased identifier into separate words,
// e.g. "IsNotBlank" becomes "Is Not Blank".
func SplitCase(value string) string {
	return splitCaseWord.ReplaceAllString(splitCaseAcronym.ReplaceAllString(value, "$1 $2"), "$1 $2")
}

// SplitList splits a delimited string dropping empty entries.
func SplitList(value string, sep string) []string {
	parts := strings.Split(value, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		result = append(result, part)
	}
	return result
}
