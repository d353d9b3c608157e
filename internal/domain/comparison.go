package domain

import (
	"strconv"
	"strings"
)

// ComparisonType is a bit flag identifying one predicate relation a filter may
// apply. The numeric codes are persisted and consumed by the client-side
// compare toggle script, so they must never be renumbered.
type ComparisonType int

const (
	ComparisonEqualTo              ComparisonType = 0x1
	ComparisonNotEqualTo           ComparisonType = 0x2
	ComparisonStartsWith           ComparisonType = 0x4
	ComparisonContains             ComparisonType = 0x8
	ComparisonDoesNotContain       ComparisonType = 0x10
	ComparisonIsBlank              ComparisonType = 0x20
	ComparisonIsNotBlank           ComparisonType = 0x40
	ComparisonGreaterThan          ComparisonType = 0x80
	ComparisonGreaterThanOrEqualTo ComparisonType = 0x100
	ComparisonLessThan             ComparisonType = 0x200
	ComparisonLessThanOrEqualTo    ComparisonType = 0x400
	ComparisonEndsWith             ComparisonType = 0x800
	ComparisonBetween              ComparisonType = 0x1000
	ComparisonRegularExpression    ComparisonType = 0x2000
)

// Comparison sets offered by the standard filter editors.
const (
	StringFilterComparisonTypes = ComparisonEqualTo | ComparisonNotEqualTo | ComparisonStartsWith |
		ComparisonContains | ComparisonDoesNotContain | ComparisonIsBlank | ComparisonIsNotBlank |
		ComparisonEndsWith

	NumericFilterComparisonTypes = ComparisonEqualTo | ComparisonNotEqualTo | ComparisonIsBlank |
		ComparisonIsNotBlank | ComparisonGreaterThan | ComparisonGreaterThanOrEqualTo |
		ComparisonLessThan | ComparisonLessThanOrEqualTo

	DateFilterComparisonTypes = NumericFilterComparisonTypes | ComparisonBetween

	ListFilterComparisonTypes = ComparisonEqualTo | ComparisonNotEqualTo | ComparisonIsBlank |
		ComparisonIsNotBlank
)

// comparisonOrder is the declaration order used when listing a set.
var comparisonOrder = []ComparisonType{
	ComparisonEqualTo,
	ComparisonNotEqualTo,
	ComparisonStartsWith,
	ComparisonContains,
	ComparisonDoesNotContain,
	ComparisonIsBlank,
	ComparisonIsNotBlank,
	ComparisonGreaterThan,
	ComparisonGreaterThanOrEqualTo,
	ComparisonLessThan,
	ComparisonLessThanOrEqualTo,
	ComparisonEndsWith,
	ComparisonBetween,
	ComparisonRegularExpression,
}

var comparisonNames = map[ComparisonType]string{
	ComparisonEqualTo:              "EqualTo",
	ComparisonNotEqualTo:           "NotEqualTo",
	ComparisonStartsWith:           "StartsWith",
	ComparisonContains:             "Contains",
	ComparisonDoesNotContain:       "DoesNotContain",
	ComparisonIsBlank:              "IsBlank",
	ComparisonIsNotBlank:           "IsNotBlank",
	ComparisonGreaterThan:          "GreaterThan",
	ComparisonGreaterThanOrEqualTo: "GreaterThanOrEqualTo",
	ComparisonLessThan:             "LessThan",
	ComparisonLessThanOrEqualTo:    "LessThanOrEqualTo",
	ComparisonEndsWith:             "EndsWith",
	ComparisonBetween:              "Between",
	ComparisonRegularExpression:    "RegularExpression",
}

// comparisonAliases maps alternative spellings accepted when parsing.
var comparisonAliases = map[string]ComparisonType{
	"equal":    ComparisonEqualTo,
	"notequal": ComparisonNotEqualTo,
}

// String returns the stable name, or the decimal code for unknown or
// combined values.
func (c ComparisonType) String() string {
	if name, ok := comparisonNames[c]; ok {
		return name
	}
	return strconv.Itoa(int(c))
}

// DisplayName returns the human readable name ("Starts With").
func (c ComparisonType) DisplayName() string {
	return SplitCase(c.String())
}

// Code returns the numeric wire code.
func (c ComparisonType) Code() int {
	return int(c)
}

// IsValid reports whether c is exactly one known comparison.
func (c ComparisonType) IsValid() bool {
	_, ok := comparisonNames[c]
	return ok
}

// IsNullCompare reports whether c is one of the blank checks that take no
// operand.
func (c ComparisonType) IsNullCompare() bool {
	return c == ComparisonIsBlank || c == ComparisonIsNotBlank
}

// Has reports whether the set c contains the single comparison other.
func (c ComparisonType) Has(other ComparisonType) bool {
	return other != 0 && c&other == other
}

// Members expands a set into its single comparisons in declaration order.
func (c ComparisonType) Members() []ComparisonType {
	members := make([]ComparisonType, 0, len(comparisonOrder))
	for _, candidate := range comparisonOrder {
		if c.Has(candidate) {
			members = append(members, candidate)
		}
	}
	return members
}

// ParseComparisonType resolves a name (case-insensitive), alias or decimal
// code to a single comparison.
func ParseComparisonType(value string) (ComparisonType, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if code, err := strconv.Atoi(value); err == nil {
		ct := ComparisonType(code)
		return ct, ct.IsValid()
	}

	for ct, name := range comparisonNames {
		if strings.EqualFold(name, value) {
			return ct, true
		}
	}

	if ct, ok := comparisonAliases[strings.ToLower(value)]; ok {
		return ct, true
	}

	return 0, false
}

// ParseComparisonTypeOrDefault behaves like ParseComparisonType but falls back
// to def when the value cannot be parsed.
func ParseComparisonTypeOrDefault(value string, def ComparisonType) ComparisonType {
	if ct, ok := ParseComparisonType(value); ok {
		return ct
	}
	return def
}
