package fieldtype

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
		ok    bool
	}{
		{"08:30:00", 8*time.Hour + 30*time.Minute, true},
		{"8:30", 8*time.Hour + 30*time.Minute, true},
		{"14:05:09.5", 14*time.Hour + 5*time.Minute + 9*time.Second + 500*time.Millisecond, true},
		{"1.02:00:00", 26 * time.Hour, true},
		{"-01:00:00", -time.Hour, true},
		{"3", 72 * time.Hour, true},
		{"3:15 pm", 15*time.Hour + 15*time.Minute, true},
		{"12:00 AM", 0, true},
		{"24:00:00", 0, false},
		{"10:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
		{"106750", 106750 * 24 * time.Hour, true},
		{"106751", 0, false},
		{"200000", 0, false},
		{"99999999999", 0, false},
		{"200000.01:00:00", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseTimeOfDay(tt.value)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Fatalf("ParseTimeOfDay(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatConstant(t *testing.T) {
	tests := map[time.Duration]string{
		8*time.Hour + 30*time.Minute:                   "08:30:00",
		26*time.Hour + 5*time.Second:                   "1.02:00:05",
		-90 * time.Minute:                              "-01:30:00",
		9*time.Second + 1234567*100*time.Nanosecond:    "00:00:09.1234567",
		23*time.Hour + 59*time.Minute + 59*time.Second: "23:59:59",
	}
	for d, want := range tests {
		if got := FormatConstant(d); got != want {
			t.Fatalf("FormatConstant(%v) = %q, want %q", d, got, want)
		}
		if back, ok := ParseTimeOfDay(want); !ok || back != d {
			t.Fatalf("ParseTimeOfDay(%q) = %v, %v; want %v", want, back, ok, d)
		}
	}
}

func TestTimeFormatValue(t *testing.T) {
	ft := NewTime()
	ctx := context.Background()

	if got := ft.FormatValue(ctx, "15:04:00", nil, false); got != "3:04 PM" {
		t.Fatalf("unexpected display %q", got)
	}
	if got := ft.FormatValue(ctx, "00:05:00", nil, true); got != "12:05 AM" {
		t.Fatalf("unexpected display %q", got)
	}
	if got := ft.FormatValue(ctx, "garbage", nil, false); got != "" {
		t.Fatalf("expected blank on parse failure, got %q", got)
	}
	if got := ft.FormatValue(ctx, "200000", nil, false); got != "" {
		t.Fatalf("expected blank for a day count past the duration range, got %q", got)
	}
}

func TestTimeEditValueRoundTrip(t *testing.T) {
	ft := NewTime()
	ctx := context.Background()
	blank := ft.EditControl(ctx, nil, "attr").(editor.TimePicker)

	if _, ok := ft.GetEditValue(ctx, blank, nil); ok {
		t.Fatalf("expected no value for an empty picker")
	}

	d := 9*time.Hour + 45*time.Minute
	state := blank.WithTime(&d)
	value, ok := ft.GetEditValue(ctx, state, nil)
	if !ok || value != "09:45:00" {
		t.Fatalf("unexpected persisted value %q (%v)", value, ok)
	}
	restored := ft.SetEditValue(ctx, blank, nil, value)
	if diff := cmp.Diff(editor.Control(state), restored); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if unchanged := ft.SetEditValue(ctx, state, nil, "bogus"); cmp.Diff(editor.Control(state), unchanged) != "" {
		t.Fatalf("expected unparseable value to leave the picker unchanged")
	}
}

func TestTimeFilterConfigAndOperands(t *testing.T) {
	ft := NewTime()
	field := ft.GetFilterConfig(AttributeDescriptor{Key: "StartTime", Name: "Start"})
	if field.FilterFieldType != TimeKey || field.ComparisonTypes != domain.DateFilterComparisonTypes || field.Title != "Start" {
		t.Fatalf("unexpected filter config %#v", field)
	}

	if got := ft.NormalizeOperand("8:30 AM"); got != "08:30:00" {
		t.Fatalf("unexpected normalised operand %q", got)
	}
	if got := ft.NormalizeOperand("8:00 AM,5:00 PM"); got != "08:00:00,17:00:00" {
		t.Fatalf("unexpected normalised range %q", got)
	}
	if got := ft.NormalizeOperand(",later"); got != ",later" {
		t.Fatalf("expected unparseable parts to pass through, got %q", got)
	}
	if got := ft.NormalizeOperand("99999999999"); got != "99999999999" {
		t.Fatalf("expected out of range day count to pass through, got %q", got)
	}
}
