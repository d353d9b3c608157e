package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/rpattn/dataview/internal/editor"
	"github.com/rpattn/dataview/internal/fieldtype"
)

func (s *Server) listFieldTypes(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.deps.FieldTypes.Descriptors())
}

func (s *Server) lookupFieldType(w http.ResponseWriter, key string) (fieldtype.FieldType, bool) {
	ft, ok := s.deps.FieldTypes.Lookup(key)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown field type "+key)
	}
	return ft, ok
}

type formatRequest struct {
	Value         string            `json:"value"`
	Configuration map[string]string `json:"configuration"`
	Condensed     bool              `json:"condensed"`
}

type formatResponse struct {
	Text string `json:"text"`
}

func (s *Server) formatValue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ft, ok := s.lookupFieldType(w, ps.ByName("key"))
	if !ok {
		return
	}
	var req formatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg := ft.Descriptor().Configure(req.Configuration)
	writeJSON(w, http.StatusOK, formatResponse{Text: ft.FormatValue(r.Context(), req.Value, cfg, req.Condensed)})
}

type editRequest struct {
	ID            string            `json:"id"`
	Value         string            `json:"value"`
	Configuration map[string]string `json:"configuration"`
}

type editResponse struct {
	Control *renderedControl `json:"control"`
	Value   string           `json:"value"`
}

// editControl builds the edit control for a value and reads the value back
// out of it, showing how the field type round trips it.
func (s *Server) editControl(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ft, ok := s.lookupFieldType(w, ps.ByName("key"))
	if !ok {
		return
	}
	var req editRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = "value"
	}

	ctx := r.Context()
	cfg := ft.Descriptor().Configure(req.Configuration)
	control := ft.EditControl(ctx, cfg, req.ID)
	if control == nil {
		writeJSON(w, http.StatusOK, editResponse{})
		return
	}
	control = ft.SetEditValue(ctx, control, cfg, req.Value)
	value, _ := ft.GetEditValue(ctx, control, cfg)

	writeJSON(w, http.StatusOK, editResponse{
		Control: &renderedControl{Kind: controlKind(control), Control: control},
		Value:   value,
	})
}

type renderedControl struct {
	Kind    string         `json:"kind"`
	Control editor.Control `json:"control"`
}

func controlKind(c editor.Control) string {
	switch c.(type) {
	case editor.TextBox:
		return "textbox"
	case editor.DropDown:
		return "dropdown"
	case editor.CheckBoxList:
		return "checkboxlist"
	case editor.KeyValueList:
		return "keyvaluelist"
	case editor.FilePicker:
		return "filepicker"
	case editor.TimePicker:
		return "timepicker"
	default:
		return "unknown"
	}
}

// jsonRenderer renders each control as one JSON document.
type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, c editor.Control) error {
	raw, err := json.Marshal(renderedControl{Kind: controlKind(c), Control: c})
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
