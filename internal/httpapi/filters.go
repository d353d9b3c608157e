package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/rpattn/dataview/internal/datafilter"
	"github.com/rpattn/dataview/internal/predicate"
	"github.com/rpattn/dataview/internal/repository"
)

type filterSummary struct {
	Key                    string            `json:"key"`
	Title                  string            `json:"title"`
	Section                string            `json:"section"`
	EntityType             string            `json:"entityType,omitempty"`
	ClientFormatSelection  string            `json:"clientFormatSelection"`
	AttributeValueDefaults map[string]string `json:"attributeValueDefaults"`
}

func (s *Server) listFilters(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entityType := r.URL.Query().Get("entityType")

	components := s.deps.Filters.Components()
	if entityType != "" {
		components = s.deps.Filters.ForEntityType(entityType)
	}

	out := make([]filterSummary, 0, len(components))
	for _, c := range components {
		out = append(out, filterSummary{
			Key:                    c.Key(),
			Title:                  c.Title(entityType),
			Section:                c.Section(),
			EntityType:             c.AppliesToEntityType(),
			ClientFormatSelection:  c.ClientFormatSelection(entityType),
			AttributeValueDefaults: c.AttributeValueDefaults(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// filterControls streams the child controls of a filter, one JSON document
// per line, restored from the optional selection.
func (s *Server) filterControls(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	q := r.URL.Query()
	entityType := q.Get("entityType")
	c, ok := s.lookupFilter(w, ps.ByName("key"), entityType)
	if !ok {
		return
	}
	id := q.Get("id")
	if id == "" {
		id = "filter"
	}

	controls := c.CreateChildControls(entityType, id)
	if selection := q.Get("selection"); selection != "" {
		controls = c.SetSelection(entityType, controls, selection)
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	if err := c.RenderControls(w, entityType, controls, jsonRenderer{}); err != nil {
		s.deps.Logger.WithError(err).WithField("filter", c.Key()).Error("Failed to render filter controls")
	}
}

type selectionRequest struct {
	EntityType string `json:"entityType"`
	Selection  string `json:"selection"`
}

type describeResponse struct {
	Description string `json:"description"`
}

func (s *Server) describeFilter(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req selectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, ok := s.lookupFilter(w, ps.ByName("key"), req.EntityType)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, describeResponse{Description: c.FormatSelection(req.EntityType, req.Selection)})
}

type compileResponse struct {
	Description string `json:"description"`
	SQL         string `json:"sql"`
	Args        []any  `json:"args"`
	Expr        string `json:"expr"`
}

func (s *Server) compileFilter(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req selectionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, ok := s.lookupFilter(w, ps.ByName("key"), req.EntityType)
	if !ok {
		return
	}

	expr := c.GetExpression(req.EntityType, s.deps.Service, repository.EntityParameter(), req.Selection)
	sql, args := predicate.NewSQLEncoder(nil).Encode(expr)
	if args == nil {
		args = []any{}
	}
	writeJSON(w, http.StatusOK, compileResponse{
		Description: c.FormatSelection(req.EntityType, req.Selection),
		SQL:         sql,
		Args:        args,
		Expr:        predicate.ExprSource(expr),
	})
}

func (s *Server) filterScript(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/javascript")
	_, _ = w.Write([]byte(datafilter.FilterCompareScript))
}
