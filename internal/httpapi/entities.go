package httpapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/export"
	"github.com/rpattn/dataview/internal/ingestion"
	"github.com/rpattn/dataview/internal/predicate"
	"github.com/rpattn/dataview/internal/repository"
	"github.com/rpattn/dataview/internal/schema/validator"
)

type validateRequest struct {
	EntityType string         `json:"entityType"`
	Properties map[string]any `json:"properties"`
}

func (s *Server) validateEntity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req validateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result := validator.ValidateProperties(req.EntityType, req.Properties, s.deps.Attributes, s.deps.FieldTypes)
	status := http.StatusOK
	if !result.IsValid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

type filterSelection struct {
	Key       string `json:"key"`
	Selection string `json:"selection"`
}

type queryRequest struct {
	EntityType string            `json:"entityType"`
	Filters    []filterSelection `json:"filters"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

type queryResponse struct {
	Descriptions []string        `json:"descriptions"`
	Total        int             `json:"total"`
	Entities     []domain.Entity `json:"entities"`
}

// buildQuery combines every filter selection of req into one expression
// bound to the entity parameter.
func (s *Server) buildQuery(w http.ResponseWriter, req queryRequest) (predicate.Expression, []string, bool) {
	if req.EntityType == "" {
		writeError(w, http.StatusBadRequest, "entityType is required")
		return nil, nil, false
	}

	param := repository.EntityParameter()
	exprs := make([]predicate.Expression, 0, len(req.Filters))
	descriptions := make([]string, 0, len(req.Filters))
	for _, f := range req.Filters {
		c, ok := s.lookupFilter(w, f.Key, req.EntityType)
		if !ok {
			return nil, nil, false
		}
		exprs = append(exprs, c.GetExpression(req.EntityType, s.deps.Service, param, f.Selection))
		descriptions = append(descriptions, c.FormatSelection(req.EntityType, f.Selection))
	}
	return predicate.And(exprs...), descriptions, true
}

func (s *Server) queryEntities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.deps.Entities == nil {
		writeError(w, http.StatusServiceUnavailable, "entity storage is not configured")
		return
	}
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	expr, descriptions, ok := s.buildQuery(w, req)
	if !ok {
		return
	}

	entities, total, err := s.deps.Entities.ListFiltered(r.Context(), req.EntityType, expr, req.Limit, req.Offset)
	if err != nil {
		s.deps.Logger.WithError(err).WithField("entityType", req.EntityType).Error("Filtered query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{Descriptions: descriptions, Total: total, Entities: entities})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) exportEntities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.deps.Exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}
	var req queryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	expr, _, ok := s.buildQuery(w, req)
	if !ok {
		return
	}
	columns, err := export.ColumnsFor(req.EntityType, s.deps.Attributes, s.deps.FieldTypes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if _, err := s.deps.Exporter.Export(r.Context(), &buf, req.EntityType, expr, columns); err != nil {
		s.deps.Logger.WithError(err).WithField("entityType", req.EntityType).Error("Export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", req.EntityType+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) importHandler() http.Handler {
	if s.deps.Importer == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusServiceUnavailable, "import is not configured")
		})
	}
	return ingestion.NewHTTPHandler(s.deps.Importer)
}
