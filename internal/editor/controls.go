// Package editor defines the immutable editor-state values exchanged between
// the UI layer and field types or filter components. Every mutation returns a
// new value; nothing here holds a reference to a live widget.
package editor

import (
	"io"
	"strconv"
	"time"
)

// CSS classes the client-side compare toggle script keys on.
const (
	CompareClass = "js-filter-compare"
	ControlClass = "js-filter-control"
)

// Control is one editor state value.
type Control interface {
	ControlID() string
}

// Renderer draws controls. It is supplied by the UI layer.
type Renderer interface {
	Render(w io.Writer, control Control) error
}

// ListItem is one option of a list control.
type ListItem struct {
	Text     string `json:"text"`
	Value    string `json:"value"`
	Selected bool   `json:"selected,omitempty"`
}

func copyItems(items []ListItem) []ListItem {
	if items == nil {
		return nil
	}
	out := make([]ListItem, len(items))
	copy(out, items)
	return out
}

// TextBox is a single line text input.
type TextBox struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Help     string `json:"help,omitempty"`
	CSSClass string `json:"cssClass,omitempty"`
	Text     string `json:"text"`
}

func (c TextBox) ControlID() string { return c.ID }

// WithText returns a copy holding text.
func (c TextBox) WithText(text string) TextBox {
	c.Text = text
	return c
}

// DropDown is a single choice list.
type DropDown struct {
	ID            string     `json:"id"`
	Label         string     `json:"label,omitempty"`
	Help          string     `json:"help,omitempty"`
	CSSClass      string     `json:"cssClass,omitempty"`
	Items         []ListItem `json:"items"`
	SelectedValue string     `json:"selectedValue"`
}

func (c DropDown) ControlID() string { return c.ID }

// WithSelectedValue returns a copy with value selected. Values that are not
// among the items leave the selection empty.
func (c DropDown) WithSelectedValue(value string) DropDown {
	c.Items = copyItems(c.Items)
	c.SelectedValue = ""
	for i := range c.Items {
		c.Items[i].Selected = c.Items[i].Value == value
		if c.Items[i].Selected {
			c.SelectedValue = value
		}
	}
	if len(c.Items) == 0 {
		c.SelectedValue = value
	}
	return c
}

// CheckBoxList is a multiple choice list.
type CheckBoxList struct {
	ID         string     `json:"id"`
	Label      string     `json:"label,omitempty"`
	Help       string     `json:"help,omitempty"`
	Horizontal bool       `json:"horizontal,omitempty"`
	Items      []ListItem `json:"items"`
}

func (c CheckBoxList) ControlID() string { return c.ID }

// SelectedValues returns the checked values in item order.
func (c CheckBoxList) SelectedValues() []string {
	values := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Selected {
			values = append(values, item.Value)
		}
	}
	return values
}

// WithSelected returns a copy where exactly the items accepted by match are
// checked.
func (c CheckBoxList) WithSelected(match func(value string) bool) CheckBoxList {
	c.Items = copyItems(c.Items)
	for i := range c.Items {
		c.Items[i].Selected = match(c.Items[i].Value)
	}
	return c
}

// KeyValuePair is one row of a KeyValueList.
type KeyValuePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KeyValueList is an ordered, editable list of key/value rows. When
// ValueOptions is set the value of each row is chosen from it.
type KeyValueList struct {
	ID           string         `json:"id"`
	Label        string         `json:"label,omitempty"`
	KeyPrompt    string         `json:"keyPrompt,omitempty"`
	ValuePrompt  string         `json:"valuePrompt,omitempty"`
	ValueOptions []ListItem     `json:"valueOptions,omitempty"`
	Pairs        []KeyValuePair `json:"pairs"`
}

func (c KeyValueList) ControlID() string { return c.ID }

// WithPairs returns a copy holding pairs.
func (c KeyValueList) WithPairs(pairs []KeyValuePair) KeyValueList {
	if pairs == nil {
		c.Pairs = nil
		return c
	}
	c.Pairs = make([]KeyValuePair, len(pairs))
	copy(c.Pairs, pairs)
	return c
}

// FilePicker selects one binary file, optionally limited to a file type.
type FilePicker struct {
	ID               string `json:"id"`
	Label            string `json:"label,omitempty"`
	BinaryFileTypeID *int   `json:"binaryFileTypeId,omitempty"`
	SelectedID       *int   `json:"selectedId,omitempty"`
	SelectedName     string `json:"selectedName,omitempty"`
}

func (c FilePicker) ControlID() string { return c.ID }

// WithSelection returns a copy with the file selected, or cleared when id is
// nil.
func (c FilePicker) WithSelection(id *int, name string) FilePicker {
	if id == nil {
		c.SelectedID = nil
		c.SelectedName = ""
		return c
	}
	v := *id
	c.SelectedID = &v
	c.SelectedName = name
	return c
}

// TimePicker selects a time of day.
type TimePicker struct {
	ID           string         `json:"id"`
	Label        string         `json:"label,omitempty"`
	SelectedTime *time.Duration `json:"selectedTime,omitempty"`
}

func (c TimePicker) ControlID() string { return c.ID }

// WithTime returns a copy holding t, or cleared when t is nil.
func (c TimePicker) WithTime(t *time.Duration) TimePicker {
	if t == nil {
		c.SelectedTime = nil
		return c
	}
	v := *t
	c.SelectedTime = &v
	return c
}

// ChildID builds the id of the n-th child control of a parent control.
func ChildID(parentID string, n int) string {
	return parentID + "_" + strconv.Itoa(n)
}
