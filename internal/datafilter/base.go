package datafilter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/editor"
	"github.com/rpattn/dataview/internal/predicate"
)

// DefaultSection groups filters that do not name a section.
const DefaultSection = "Additional Filters"

// DefaultComparison is used when a selection's operator cannot be parsed.
const DefaultComparison = domain.ComparisonStartsWith

// AttributeValueDefaults returns the attribute values every component starts
// with.
func AttributeValueDefaults() map[string]string {
	return map[string]string{"Active": "True"}
}

// Selection is a decoded "operator|operand" selection.
type Selection struct {
	Comparison domain.ComparisonType
	Operand    string
}

// ParseSelection splits selection at the first '|'. The operator may be a
// name or numeric code and falls back to DefaultComparison. ok is false when
// there is no operand segment.
func ParseSelection(selection string) (Selection, bool) {
	op, operand, found := strings.Cut(selection, "|")
	return Selection{
		Comparison: domain.ParseComparisonTypeOrDefault(op, DefaultComparison),
		Operand:    operand,
	}, found
}

// String encodes the selection with the operator name.
func (s Selection) String() string {
	return s.Comparison.String() + "|" + s.Operand
}

// FormatSelection describes a default selection as
// "{title} {operator} '{operand}'".
func FormatSelection(title, selection string) string {
	s, _ := ParseSelection(selection)
	return formatDescription(title, s.Comparison, s.Operand)
}

func formatDescription(title string, comparison domain.ComparisonType, operand string) string {
	return fmt.Sprintf("%s %s '%s'", title, comparison.DisplayName(), operand)
}

// ClientFormatSelection returns the client script expression that describes
// the selection from the rendered controls.
func ClientFormatSelection(title string) string {
	return fmt.Sprintf(`'%s ' + $('select', $content).find(':selected').text() + ' \'' + $('input', $content).val() + '\''`, title)
}

// ComparisonControl builds the operator drop down. Item values are the
// numeric codes the compare toggle script inspects.
func ComparisonControl(id string, comparisons domain.ComparisonType) editor.DropDown {
	members := comparisons.Members()
	items := make([]editor.ListItem, len(members))
	for i, ct := range members {
		items[i] = editor.ListItem{Text: ct.DisplayName(), Value: strconv.Itoa(ct.Code())}
	}
	return editor.DropDown{ID: id, CSSClass: editor.CompareClass, Items: items}
}

// CreateChildControls builds the operator drop down and operand text box.
func CreateChildControls(id string, comparisons domain.ComparisonType) []editor.Control {
	return []editor.Control{
		ComparisonControl(editor.ChildID(id, 0), comparisons),
		editor.TextBox{ID: editor.ChildID(id, 1), CSSClass: editor.ControlClass},
	}
}

// RenderControls renders each control followed by a line break.
func RenderControls(w io.Writer, controls []editor.Control, r editor.Renderer) error {
	for _, control := range controls {
		if err := r.Render(w, control); err != nil {
			return errors.Wrapf(err, "failed to render control %s", control.ControlID())
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return errors.Wrap(err, "failed to render controls")
		}
	}
	return nil
}

// GetSelection reads the operator drop down and operand text box.
func GetSelection(controls []editor.Control) string {
	if len(controls) < 2 {
		return ""
	}
	dd, ok := controls[0].(editor.DropDown)
	if !ok {
		return ""
	}
	tb, ok := controls[1].(editor.TextBox)
	if !ok {
		return ""
	}
	return selectionFromControl(dd, tb.Text)
}

// SetSelection is the inverse of GetSelection. Selections without an operand
// segment leave the controls unchanged.
func SetSelection(controls []editor.Control, selection string) []editor.Control {
	out := copyControls(controls)
	s, ok := ParseSelection(selection)
	if !ok || len(out) < 2 {
		return out
	}
	if dd, ok := out[0].(editor.DropDown); ok {
		out[0] = selectComparison(dd, selection)
	}
	if tb, ok := out[1].(editor.TextBox); ok {
		out[1] = tb.WithText(s.Operand)
	}
	return out
}

func selectionFromControl(dd editor.DropDown, operand string) string {
	if ct, ok := domain.ParseComparisonType(dd.SelectedValue); ok {
		return Selection{Comparison: ct, Operand: operand}.String()
	}
	return dd.SelectedValue + "|" + operand
}

func selectComparison(dd editor.DropDown, selection string) editor.DropDown {
	op, _, _ := strings.Cut(selection, "|")
	if ct, ok := domain.ParseComparisonType(op); ok {
		return dd.WithSelectedValue(strconv.Itoa(ct.Code()))
	}
	return dd.WithSelectedValue(op)
}

func copyControls(controls []editor.Control) []editor.Control {
	if controls == nil {
		return nil
	}
	out := make([]editor.Control, len(controls))
	copy(out, controls)
	return out
}

// compile builds the default single operand predicate. Comparisons outside
// allowed degrade to True.
func compile(member predicate.Member, allowed domain.ComparisonType, selection string, normalize func(string) string) predicate.Expression {
	s, ok := ParseSelection(selection)
	if !ok || !allowed.Has(s.Comparison) {
		return predicate.True()
	}
	operand := s.Operand
	if normalize != nil {
		operand = normalize(operand)
	}
	expr, ok := predicate.Build(member, s.Comparison, operand)
	if !ok {
		return predicate.True()
	}
	return expr
}

type membershipBuilder func(predicate.Member, domain.ComparisonType, []string) (predicate.Expression, bool)

// compileMembership builds a predicate over a comma separated id set.
func compileMembership(member predicate.Member, allowed domain.ComparisonType, selection string, build membershipBuilder) predicate.Expression {
	s, ok := ParseSelection(selection)
	if !ok || !allowed.Has(s.Comparison) {
		return predicate.True()
	}
	values := trimmedList(s.Operand)
	expr, ok := build(member, s.Comparison, values)
	if !ok {
		return predicate.True()
	}
	return expr
}

func trimmedList(value string) []string {
	parts := domain.SplitList(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
