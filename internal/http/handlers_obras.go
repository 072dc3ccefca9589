package http

import (
	"bytes"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"obras/internal/core"
	"obras/internal/export"
	applog "obras/internal/log"
	"obras/internal/report"
	"obras/internal/services"
)

// handleReport streams the PDF report of one project as an attachment.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	rep, err := s.svc.Report(ctx, id)
	switch {
	case err == nil:
	case services.IsNotFound(err):
		NotFoundError(msgNotFound).Write(w)
		return
	case errors.Is(err, report.ErrRendererUnavailable):
		ServiceUnavailableError(msgRendererMissing).
			TriggerErrorNotification(msgRendererMissing).
			Write(w)
		return
	default:
		applog.FromContext(ctx).ErrorContext(ctx, "Report download failed",
			applog.FieldProjectID, id, applog.FieldError, err)
		InternalServerError(msgReportFailed).
			TriggerErrorNotification(msgReportFailed).
			Write(w)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", "application/pdf").
		Header("Content-Disposition", attachment(rep.FileName)).
		Header("Content-Length", strconv.Itoa(len(rep.Data))).
		Header("Cache-Control", "no-store").
		Body(rep.Data).
		Write(w)
}

// handleExport downloads the currently filtered list as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())

	var buf bytes.Buffer
	if err := s.svc.ExportCSV(r.Context(), &buf, params.Status, params.Query); err != nil {
		if errors.Is(err, core.ErrInvalidStatus) {
			BadRequestError(msgBadFilter).Write(w)
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed", applog.FieldError, err)
		InternalServerError("No se pudo exportar el listado").Write(w)
		return
	}

	NewHTMXResponse().
		Header("Content-Type", "text/csv; charset=utf-8").
		Header("Content-Disposition", attachment(export.FileName)).
		Body(buf.Bytes()).
		Write(w)
}

// handleApprove approves a project's progress and answers with the
// confirmation both as body and as a notification trigger, closing the
// detail modal.
func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	msg, err := s.svc.Approve(r.Context(), id)
	if err != nil {
		if services.IsNotFound(err) {
			NotFoundError(msgNotFound).TriggerErrorNotification(msgNotFound).Write(w)
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Approval failed",
			applog.FieldProjectID, id, applog.FieldError, err)
		InternalServerError("No se pudo aprobar el avance").Write(w)
		return
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "approval_result", msg); err != nil {
		InternalServerError("Error interno").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerSuccessNotification(msg).
		TriggerProjectApproved(id).
		TriggerModalClose().
		BodyHTML(body.String()).
		Write(w)
}

// attachment builds a Content-Disposition value; non-ASCII names are
// encoded per RFC 2231.
func attachment(name string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": name})
}
