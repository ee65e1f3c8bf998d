// Package api serves read-only queries over a cleaned employee table.
package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/KaramelBytes/staffclean-cli/internal/chart"
	"github.com/KaramelBytes/staffclean-cli/internal/query"
	"github.com/KaramelBytes/staffclean-cli/internal/table"
)

// DefaultTopN is used when /top_n_employees has no n parameter.
const DefaultTopN = 5

// Server holds the table it answers for. The table must not be mutated
// after NewServer; handlers read it without locking.
type Server struct {
	table    *table.Table
	logger   *zap.Logger
	defaultN int
}

// NewServer returns a server over t. defaultN <= 0 selects DefaultTopN.
func NewServer(t *table.Table, defaultN int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultN <= 0 {
		defaultN = DefaultTopN
	}
	return &Server{table: t, logger: logger, defaultN: defaultN}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	logged := LoggingMiddleware(s.logger)
	router.Use(logged)
	router.HandleFunc("/top_n_employees", s.topNEmployees).Methods("GET")
	router.HandleFunc("/employee_count", s.employeeCount).Methods("GET")
	router.HandleFunc("/department_summary", s.departmentSummary).Methods("GET")
	router.HandleFunc("/charts/department_salaries", s.departmentSalariesChart).Methods("GET")
	router.HandleFunc("/healthz", s.healthz).Methods("GET")
	// mux skips Use middleware for these two handlers.
	router.NotFoundHandler = logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSONError(w, http.StatusNotFound, "not found")
	}))
	router.MethodNotAllowedHandler = logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))
	return router
}

func (s *Server) topNEmployees(w http.ResponseWriter, r *http.Request) {
	n := s.defaultN
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.badRequest(w, query.ErrNegativeN.Error())
			return
		}
		n = v
	}
	out, err := query.TopN(s.table, n)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) employeeCount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if _, ok := q["department"]; !ok {
		s.badRequest(w, "Department parameter is required")
		return
	}
	s.writeJSON(w, http.StatusOK, query.CountByDepartment(s.table, q.Get("department")))
}

func (s *Server) departmentSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, query.Summarize(s.table))
}

func (s *Server) departmentSalariesChart(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := chart.DepartmentSalaries(&buf, query.Summarize(s.table), chart.Options{Subtitle: s.table.Name})
	if err != nil {
		s.logger.Error("chart render failed", zap.Error(err))
		s.writeJSONError(w, http.StatusInternalServerError, "render error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": s.table.Len()})
}
