package domain

import "testing"

func TestBlankComparisonCodesAreFixed(t *testing.T) {
	if ComparisonIsBlank.Code() != 32 {
		t.Fatalf("expected IsBlank code 32, got %d", ComparisonIsBlank.Code())
	}
	if ComparisonIsNotBlank.Code() != 64 {
		t.Fatalf("expected IsNotBlank code 64, got %d", ComparisonIsNotBlank.Code())
	}
	if !ComparisonIsBlank.IsNullCompare() || !ComparisonIsNotBlank.IsNullCompare() {
		t.Fatalf("expected blank checks to be null compares")
	}
	if ComparisonEqualTo.IsNullCompare() {
		t.Fatalf("EqualTo must not be a null compare")
	}
}

func TestParseComparisonType(t *testing.T) {
	cases := []struct {
		input string
		want  ComparisonType
		ok    bool
	}{
		{"StartsWith", ComparisonStartsWith, true},
		{"startswith", ComparisonStartsWith, true},
		{"Equal", ComparisonEqualTo, true},
		{"EqualTo", ComparisonEqualTo, true},
		{"32", ComparisonIsBlank, true},
		{" 64 ", ComparisonIsNotBlank, true},
		{"3", 0, false},
		{"Bogus", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseComparisonType(tc.input)
		if ok != tc.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tc.input, tc.ok, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.input, tc.want, got)
		}
	}
}

func TestParseComparisonTypeOrDefaultFallsBack(t *testing.T) {
	if got := ParseComparisonTypeOrDefault("nope", ComparisonStartsWith); got != ComparisonStartsWith {
		t.Fatalf("expected fallback to StartsWith, got %v", got)
	}
}

func TestComparisonDisplayName(t *testing.T) {
	if got := ComparisonStartsWith.DisplayName(); got != "Starts With" {
		t.Fatalf("unexpected display name %q", got)
	}
	if got := ComparisonGreaterThanOrEqualTo.DisplayName(); got != "Greater Than Or Equal To" {
		t.Fatalf("unexpected display name %q", got)
	}
}

func TestComparisonSetMembersFollowDeclarationOrder(t *testing.T) {
	members := ListFilterComparisonTypes.Members()
	want := []ComparisonType{ComparisonEqualTo, ComparisonNotEqualTo, ComparisonIsBlank, ComparisonIsNotBlank}
	if len(members) != len(want) {
		t.Fatalf("expected %d members, got %v", len(want), members)
	}
	for i := range want {
		if members[i] != want[i] {
			t.Fatalf("member %d: expected %v, got %v", i, want[i], members[i])
		}
	}
	if StringFilterComparisonTypes.Has(ComparisonBetween) {
		t.Fatalf("string comparisons must not include Between")
	}
}
