package predicate

import (
	"strings"

	"github.com/rpattn/dataview/internal/domain"
)

// Build turns one comparison type and its literal operand into a predicate
// over member. It reports false when the comparison cannot be expressed, in
// which case callers degrade to True.
//
// Between takes "low,high"; either bound may be empty but not both.
func Build(member Member, comparison domain.ComparisonType, operand string) (Expression, bool) {
	switch comparison {
	case domain.ComparisonEqualTo:
		return Comparison{Op: OpEqual, Left: member, Right: operand}, true
	case domain.ComparisonNotEqualTo:
		return Not(Comparison{Op: OpEqual, Left: member, Right: operand}), true
	case domain.ComparisonStartsWith:
		return Comparison{Op: OpStartsWith, Left: member, Right: operand}, true
	case domain.ComparisonEndsWith:
		return Comparison{Op: OpEndsWith, Left: member, Right: operand}, true
	case domain.ComparisonContains:
		return Comparison{Op: OpContains, Left: member, Right: operand}, true
	case domain.ComparisonDoesNotContain:
		return Not(Comparison{Op: OpContains, Left: member, Right: operand}), true
	case domain.ComparisonIsBlank:
		return Blank{Left: member}, true
	case domain.ComparisonIsNotBlank:
		return Not(Blank{Left: member}), true
	case domain.ComparisonGreaterThan:
		return Comparison{Op: OpGreaterThan, Left: member, Right: operand}, true
	case domain.ComparisonGreaterThanOrEqualTo:
		return Comparison{Op: OpGreaterThanOrEqual, Left: member, Right: operand}, true
	case domain.ComparisonLessThan:
		return Comparison{Op: OpLessThan, Left: member, Right: operand}, true
	case domain.ComparisonLessThanOrEqualTo:
		return Comparison{Op: OpLessThanOrEqual, Left: member, Right: operand}, true
	case domain.ComparisonRegularExpression:
		return Comparison{Op: OpMatches, Left: member, Right: operand}, true
	case domain.ComparisonBetween:
		return buildRange(member, operand)
	}
	return nil, false
}

func buildRange(member Member, operand string) (Expression, bool) {
	bounds := strings.Split(operand, ",")
	if len(bounds) != 2 {
		return nil, false
	}
	low := strings.TrimSpace(bounds[0])
	high := strings.TrimSpace(bounds[1])
	if low == "" && high == "" {
		return nil, false
	}
	return Range{Left: member, Low: low, High: high}, true
}

// BuildMembership compiles comparisons over a set of reference values.
// EqualTo means "is one of", NotEqualTo "is none of".
func BuildMembership(member Member, comparison domain.ComparisonType, values []string) (Expression, bool) {
	return buildMembership(member, comparison, values, false)
}

// BuildKeySetMembership is BuildMembership for members persisted as comma
// separated key sets. EqualTo matches when any stored key is selected.
func BuildKeySetMembership(member Member, comparison domain.ComparisonType, values []string) (Expression, bool) {
	return buildMembership(member, comparison, values, true)
}

func buildMembership(member Member, comparison domain.ComparisonType, values []string, keySet bool) (Expression, bool) {
	switch comparison {
	case domain.ComparisonIsBlank:
		return Blank{Left: member}, true
	case domain.ComparisonIsNotBlank:
		return Not(Blank{Left: member}), true
	}

	if len(values) == 0 {
		return nil, false
	}
	set := Membership{Left: member, Values: append([]string(nil), values...), KeySet: keySet}

	switch comparison {
	case domain.ComparisonEqualTo, domain.ComparisonContains:
		return set, true
	case domain.ComparisonNotEqualTo, domain.ComparisonDoesNotContain:
		return Not(set), true
	}
	return nil, false
}
