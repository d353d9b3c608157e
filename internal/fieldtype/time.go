package fieldtype

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
)

// TimeKey is the registry key of Time.
const TimeKey = "time"

// Time stores a time of day in the culture invariant constant format
// "[-][d.]hh:mm:ss[.fffffff]" and displays it as "3:04 PM".
type Time struct{}

// NewTime returns the time of day field type.
func NewTime() Time {
	return Time{}
}

func (Time) Descriptor() Descriptor {
	return Descriptor{
		Key:          TimeKey,
		Name:         "Time",
		Description:  "A time of day.",
		Capabilities: Capabilities{FilterOperators: true},
	}
}

func (Time) FormatValue(_ context.Context, value string, _ ConfigurationValues, _ bool) string {
	d, ok := ParseTimeOfDay(value)
	if !ok {
		return ""
	}
	return FormatTimeOfDay(d)
}

func (t Time) ConfigurationKeys() []string {
	return t.Descriptor().KeyNames()
}

func (t Time) ConfigurationControls(context.Context) []editor.Control {
	return configurationControls(t.Descriptor(), nil)
}

func (t Time) ConfigurationValues(controls []editor.Control) ConfigurationValues {
	return readConfiguration(t.Descriptor(), controls)
}

func (t Time) SetConfigurationValues(controls []editor.Control, cfg ConfigurationValues) []editor.Control {
	return writeConfiguration(t.Descriptor(), controls, cfg)
}

func (Time) EditControl(_ context.Context, _ ConfigurationValues, id string) editor.Control {
	return editor.TimePicker{ID: id}
}

func (Time) GetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues) (string, bool) {
	tp, ok := control.(editor.TimePicker)
	if !ok || tp.SelectedTime == nil {
		return "", false
	}
	return FormatConstant(*tp.SelectedTime), true
}

// SetEditValue selects the parsed time. Values that do not parse leave the
// picker unchanged.
func (Time) SetEditValue(_ context.Context, control editor.Control, _ ConfigurationValues, value string) editor.Control {
	tp, ok := control.(editor.TimePicker)
	if !ok {
		return control
	}
	d, parsed := ParseTimeOfDay(value)
	if !parsed {
		return tp
	}
	return tp.WithTime(&d)
}

func (t Time) GetFilterConfig(attr AttributeDescriptor) EntityField {
	return filterConfig(t.Descriptor(), attr, domain.DateFilterComparisonTypes)
}

// NormalizeOperand converts filter operands such as "8:30 AM" to the
// persisted format so they compare with stored values. Between operands are
// normalised bound by bound.
func (Time) NormalizeOperand(operand string) string {
	parts := strings.Split(operand, ",")
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if d, ok := ParseTimeOfDay(part); ok {
			parts[i] = FormatConstant(d)
		}
	}
	return strings.Join(parts, ",")
}

// FormatConstant renders d as "[-][d.]hh:mm:ss[.fffffff]".
func FormatConstant(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		fmt.Fprintf(&b, "%d.", int64(days))
	}
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	fmt.Fprintf(&b, "%02d:%02d:%02d", int64(hours), int64(minutes), int64(seconds))
	if ticks := d / 100; ticks > 0 {
		fmt.Fprintf(&b, ".%07d", int64(ticks))
	}
	return b.String()
}

// FormatTimeOfDay renders d as a 12 hour clock time ("3:04 PM").
func FormatTimeOfDay(d time.Duration) string {
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(d).Format("3:04 PM")
}

var clockLayouts = []string{"3:04 PM", "3:04PM", "3:04:05 PM", "3 PM", "3PM"}

// ParseTimeOfDay accepts the constant format and its shorter forms
// ("hh:mm", "d.hh:mm:ss", a bare day count) as well as 12 hour clock times.
func ParseTimeOfDay(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if d, ok := parseConstant(value); ok {
		return d, true
	}
	upper := strings.ToUpper(value)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, true
		}
	}
	return 0, false
}

// maxDays keeps a day count plus a full day of clock time inside a
// time.Duration.
const maxDays = int(math.MaxInt64/int64(24*time.Hour)) - 1

func parseConstant(value string) (time.Duration, bool) {
	negative := strings.HasPrefix(value, "-")
	if negative {
		value = value[1:]
	}

	var d time.Duration
	if !strings.Contains(value, ":") {
		days, ok := parseBounded(value, maxDays)
		if !ok {
			return 0, false
		}
		d = time.Duration(days) * 24 * time.Hour
	} else {
		parts := strings.Split(value, ":")
		if len(parts) > 3 {
			return 0, false
		}

		head := parts[0]
		if dayPart, hourPart, found := strings.Cut(head, "."); found {
			days, ok := parseBounded(dayPart, maxDays)
			if !ok {
				return 0, false
			}
			d += time.Duration(days) * 24 * time.Hour
			head = hourPart
		}

		hours, ok := parseBounded(head, 23)
		if !ok {
			return 0, false
		}
		minutes, ok := parseBounded(parts[1], 59)
		if !ok {
			return 0, false
		}
		d += time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute

		if len(parts) == 3 {
			secondPart, fraction, hasFraction := strings.Cut(parts[2], ".")
			seconds, ok := parseBounded(secondPart, 59)
			if !ok {
				return 0, false
			}
			d += time.Duration(seconds) * time.Second
			if hasFraction {
				ticks, ok := parseFraction(fraction)
				if !ok {
					return 0, false
				}
				d += ticks
			}
		}
	}

	if negative {
		d = -d
	}
	return d, true
}

// parseBounded parses a non negative decimal no greater than limit. A
// negative limit means unbounded.
func parseBounded(value string, limit int) (int, bool) {
	if value == "" || strings.TrimLeft(value, "0123456789") != "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || (limit >= 0 && n > limit) {
		return 0, false
	}
	return n, true
}

// parseFraction parses up to seven fractional second digits.
func parseFraction(value string) (time.Duration, bool) {
	if value == "" || len(value) > 7 {
		return 0, false
	}
	n, ok := parseBounded(value+strings.Repeat("0", 7-len(value)), -1)
	if !ok {
		return 0, false
	}
	return time.Duration(n) * 100, true
}
