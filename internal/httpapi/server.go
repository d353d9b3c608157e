// Package httpapi exposes field types, filter components and filtered entity
// queries over a small JSON API.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/rpattn/dataview/internal/datafilter"
	"github.com/rpattn/dataview/internal/domain"
	"github.com/rpattn/dataview/internal/export"
	"github.com/rpattn/dataview/internal/fieldtype"
	"github.com/rpattn/dataview/internal/ingestion"
	"github.com/rpattn/dataview/internal/repository"
)

// Dependencies wires the API. Entities, Exporter and Importer may be nil, in
// which case the routes needing them answer 503.
type Dependencies struct {
	FieldTypes *fieldtype.Registry
	Filters    *datafilter.Registry
	Attributes []domain.AttributeDefinition
	Service    datafilter.Service
	Entities   repository.EntityRepository
	Exporter   *export.Service
	Importer   *ingestion.Service
	Logger     logrus.FieldLogger
}

type Server struct {
	deps   Dependencies
	router *httprouter.Router
}

func New(deps Dependencies) *Server {
	if deps.Service == nil {
		deps.Service = datafilter.EntityService{}
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}

	s := &Server{deps: deps, router: httprouter.New()}

	s.router.GET("/fieldtypes", s.listFieldTypes)
	s.router.POST("/fieldtypes/:key/format", s.formatValue)
	s.router.POST("/fieldtypes/:key/edit", s.editControl)

	s.router.GET("/filters", s.listFilters)
	s.router.GET("/filters/:key/controls", s.filterControls)
	s.router.POST("/filters/:key/describe", s.describeFilter)
	s.router.POST("/filters/:key/compile", s.compileFilter)
	s.router.GET("/filter-script", s.filterScript)

	s.router.POST("/entities/validate", s.validateEntity)
	s.router.POST("/entities/query", s.queryEntities)
	s.router.POST("/export", s.exportEntities)
	s.router.Handler(http.MethodPost, "/entities/import", s.importHandler())

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// lookupFilter finds the component named in the route and checks it applies
// to entityType.
func (s *Server) lookupFilter(w http.ResponseWriter, key, entityType string) (datafilter.Component, bool) {
	c, ok := s.deps.Filters.Lookup(key)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown filter "+key)
		return nil, false
	}
	if applies := c.AppliesToEntityType(); applies != "" && !strings.EqualFold(applies, entityType) {
		writeError(w, http.StatusBadRequest, "filter "+key+" does not apply to entity type "+entityType)
		return nil, false
	}
	return c, true
}
