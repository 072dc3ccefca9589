package http

import (
	"encoding/json"
	"net/http"
	"time"

	"obras/internal/core"
	applog "obras/internal/log"
	"obras/internal/services"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	view := newDashboardView(s.svc.KPIs(), s.svc.Receivables(), s.featured)
	s.render(w, r, "dashboard_page", view)
}

func (s *Server) handleGestion(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())
	projects, err := s.svc.Projects(r.Context(), params.Status, params.Query)
	if err != nil {
		BadRequestError(msgBadFilter).Write(w)
		return
	}
	view := gestionView{
		List:        newListView(projects, params, s.svc.KPIs().HasPending),
		Receivables: s.svc.Receivables(),
	}
	if params.Selected != "" {
		if p, err := s.svc.Project(params.Selected); err == nil {
			view.Detail.Project = &p
		}
	}
	s.render(w, r, "gestion_page", view)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "kpis", newDashboardView(s.svc.KPIs(), s.svc.Receivables(), s.featured))
}

func (s *Server) handleReceivables(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "receivables", s.svc.Receivables())
}

// handleProjectList serves the filtered list partial. The status and search
// parameters are echoed back into HX-Push-Url so the page can be reloaded.
func (s *Server) handleProjectList(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())
	projects, err := s.svc.Projects(r.Context(), params.Status, params.Query)
	if err != nil {
		BadRequestError(msgBadFilter).Write(w)
		return
	}
	if r.Header.Get("HX-Request") == "true" {
		push := "/gestion"
		if q := params.Encode(); q != "" {
			push += "?" + q
		}
		w.Header().Set("HX-Push-Url", push)
	}
	s.render(w, r, "project_list", newListView(projects, params, s.svc.KPIs().HasPending))
}

func (s *Server) handleProjectDetail(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookupProject(w, r)
	if !ok {
		return
	}
	s.render(w, r, "project_detail", detailView{Project: &p})
}

func (s *Server) handleProjectModal(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookupProject(w, r)
	if !ok {
		return
	}
	s.render(w, r, "project_modal", p)
}

func (s *Server) lookupProject(w http.ResponseWriter, r *http.Request) (core.Project, bool) {
	p, err := s.svc.Project(r.PathValue("id"))
	if err != nil {
		if services.IsNotFound(err) {
			NotFoundError(msgNotFound).Write(w)
			return core.Project{}, false
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Project lookup failed", applog.FieldError, err)
		InternalServerError("Error interno").Write(w)
		return core.Project{}, false
	}
	return p, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports not_ready until the catalog holds projects. The PDF
// renderer is reported as pending, unavailable or ok without affecting
// readiness.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if n := len(s.svc.Catalog().Projects); n == 0 {
		checks["catalog"] = "empty"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["catalog"] = map[string]any{
			"projects":    n,
			"receivables": len(s.svc.Receivables()),
			"loaded_at":   s.svc.LoadedAt().Format(time.RFC3339),
		}
	}

	select {
	case <-s.renderers.Ready():
		if _, err := s.renderers.Renderer(); err != nil {
			checks["pdf_renderer"] = "unavailable"
		} else {
			checks["pdf_renderer"] = "ok"
		}
	default:
		checks["pdf_renderer"] = "pending"
	}
	checks["rate_limiter"] = map[string]any{"active_clients": s.limiter.ActiveClients()}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
