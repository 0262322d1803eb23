// Package http exposes the entry-editing engine as a JSON API. Sessions
// are keyed by entry id and exclusively owned by this surface while open.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/massanella/fichaflow"
	"github.com/massanella/fichaflow/internal/logging"
	"github.com/massanella/fichaflow/internal/metrics"
	"github.com/massanella/fichaflow/pkg/budget"
	"github.com/massanella/fichaflow/pkg/ports"
	"github.com/massanella/fichaflow/pkg/schema"
)

// Server holds the open entry sessions.
type Server struct {
	engine *fichaflow.Engine
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*fichaflow.EntrySession
}

// NewHandler builds the chi router for the engine.
func NewHandler(engine *fichaflow.Engine, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:   engine,
		logger:   logger,
		sessions: make(map[string]*fichaflow.EntrySession),
	}

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/templates", s.listTemplates)
	r.Get("/templates/{templateID}", s.getTemplate)
	r.Get("/catalog", s.getCatalog)

	r.Post("/entries", s.openEntry)
	r.Route("/entries/{entryID}", func(r chi.Router) {
		r.Get("/", s.getState)
		r.Delete("/", s.closeEntry)
		r.Post("/answers", s.setAnswer)
		r.Post("/next", s.next)
		r.Post("/back", s.back)
		r.Get("/review", s.review)
		r.Get("/budget/{nodeID}", s.getBudget)
		r.Post("/budget/{nodeID}", s.editBudget)
		r.Post("/finalize", s.finalize)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) session(entryID string) (*fichaflow.EntrySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	es, ok := s.sessions[entryID]
	return es, ok
}

// stateResponse is the common session view returned by mutating endpoints.
type stateResponse struct {
	EntryID     string       `json:"entryId"`
	CurrentNode *schema.Node `json:"currentNode"`
	Step        int          `json:"step"`
	Total       int          `json:"total"`
	Status      string       `json:"status"`
	LastError   string       `json:"lastError,omitempty"`
	History     []string     `json:"history"`
}

func (s *Server) stateOf(es *fichaflow.EntrySession) stateResponse {
	step, total := es.Progress()
	resp := stateResponse{
		EntryID:     es.EntryID,
		CurrentNode: es.Current(),
		Step:        step,
		Total:       total,
		Status:      string(es.Status()),
		History:     es.History(),
	}
	if err := es.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	return resp
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Loader().ListTemplates(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to list templates", err)
		return
	}
	s.writeJSON(w, map[string]any{"templates": ids})
}

func (s *Server) getTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "templateID")
	tpl, err := s.engine.Loader().LoadTemplate(r.Context(), templateID)
	if err != nil {
		if errors.Is(err, ports.ErrTemplateNotFound) {
			s.fail(w, http.StatusNotFound, "template not found", err)
			return
		}
		s.fail(w, http.StatusInternalServerError, "failed to load template", err)
		return
	}
	s.writeJSON(w, tpl)
}

func (s *Server) getCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog()
	if cat == nil {
		s.fail(w, http.StatusNotFound, "no catalog configured", nil)
		return
	}
	treatments, err := cat.Treatments(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to load catalog", err)
		return
	}
	s.writeJSON(w, map[string]any{"treatments": treatments})
}

func (s *Server) openEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		EntryID    string `json:"entryId"`
		TemplateID string `json:"templateId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.TemplateID == "" {
		s.fail(w, http.StatusBadRequest, "templateId is required", nil)
		return
	}
	if body.EntryID == "" {
		body.EntryID = uuid.NewString()
	}

	s.mu.Lock()
	if _, open := s.sessions[body.EntryID]; open {
		s.mu.Unlock()
		s.fail(w, http.StatusConflict, "entry is already open", nil)
		return
	}
	s.mu.Unlock()

	es, err := s.engine.Open(r.Context(), body.EntryID, body.TemplateID)
	if err != nil {
		if errors.Is(err, ports.ErrTemplateNotFound) {
			s.fail(w, http.StatusNotFound, "template not found", err)
			return
		}
		s.fail(w, http.StatusInternalServerError, "failed to open entry", err)
		return
	}

	s.mu.Lock()
	s.sessions[body.EntryID] = es
	s.mu.Unlock()

	s.logger.Info("entry opened", "entry_id", body.EntryID, "template_id", body.TemplateID)
	s.writeJSON(w, s.stateOf(es))
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(chi.URLParam(r, "entryID"))
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	s.writeJSON(w, s.stateOf(es))
}

func (s *Server) closeEntry(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	s.mu.Lock()
	es, ok := s.sessions[entryID]
	delete(s.sessions, entryID)
	s.mu.Unlock()
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	es.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setAnswer(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(chi.URLParam(r, "entryID"))
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	var body struct {
		Key   string `json:"key"`
		Value any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.Key == "" {
		s.fail(w, http.StatusBadRequest, "key is required", nil)
		return
	}
	es.SetAnswer(body.Key, body.Value)
	s.writeJSON(w, s.stateOf(es))
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(chi.URLParam(r, "entryID"))
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	advanced := es.Next()
	if advanced {
		if node := es.Current(); node != nil {
			metrics.NodeVisits.WithLabelValues(node.Type).Inc()
		}
	}
	resp := struct {
		stateResponse
		Advanced bool `json:"advanced"`
	}{s.stateOf(es), advanced}
	s.writeJSON(w, resp)
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(chi.URLParam(r, "entryID"))
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	es.Back()
	s.writeJSON(w, s.stateOf(es))
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(chi.URLParam(r, "entryID"))
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	s.writeJSON(w, es.Review())
}

func (s *Server) getBudget(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(chi.URLParam(r, "entryID"))
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	data, err := es.BudgetData(chi.URLParam(r, "nodeID"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, "failed to resolve budget", err)
		return
	}
	s.writeJSON(w, data)
}

// budgetEditRequest carries one editing operation on a budget node.
type budgetEditRequest struct {
	Op          string  `json:"op"` // quantity | price | description | add | remove | discountPercent | discountAmount
	Index       int     `json:"index"`
	Cantidad    int     `json:"cantidad"`
	Precio      float64 `json:"precio"`
	Descripcion string  `json:"descripcion"`
	Porcentaje  int     `json:"porcentaje"`
	Importe     float64 `json:"importe"`
}

func (s *Server) editBudget(w http.ResponseWriter, r *http.Request) {
	es, ok := s.session(chi.URLParam(r, "entryID"))
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	var body budgetEditRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	nodeID := chi.URLParam(r, "nodeID")
	err := es.BudgetEdit(nodeID, func(d *budget.Data, cfg *schema.BudgetConfig) error {
		switch body.Op {
		case "quantity":
			return d.SetQuantity(cfg, body.Index, body.Cantidad)
		case "price":
			return d.SetUnitPrice(cfg, body.Index, body.Precio)
		case "description":
			return d.SetDescription(body.Index, body.Descripcion)
		case "add":
			return d.AddItem(cfg, body.Descripcion)
		case "remove":
			return d.RemoveItem(cfg, body.Index)
		case "discountPercent":
			d.SetDiscountPercent(body.Porcentaje)
			return nil
		case "discountAmount":
			d.SetDiscountAmount(body.Importe)
			return nil
		default:
			return fmt.Errorf("unknown budget op %q", body.Op)
		}
	})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, budget.ErrEditNotAllowed) || errors.Is(err, budget.ErrProtectedItem) {
			status = http.StatusForbidden
		}
		s.fail(w, status, "budget edit rejected", err)
		return
	}

	data, err := es.BudgetData(nodeID)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "failed to reload budget", err)
		return
	}
	s.writeJSON(w, data)
}

func (s *Server) finalize(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	es, ok := s.session(entryID)
	if !ok {
		s.fail(w, http.StatusNotFound, "entry is not open", nil)
		return
	}
	if err := es.Finalize(r.Context()); err != nil {
		// The entry stays open, editable and dirty.
		s.fail(w, http.StatusBadGateway, "finalize failed", err)
		return
	}

	s.mu.Lock()
	delete(s.sessions, entryID)
	s.mu.Unlock()
	es.Close()

	s.logger.Info("entry finalized", "entry_id", entryID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		s.logger.Warn(msg, "err", err)
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	http.Error(w, msg, status)
}
