package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vigil/internal/audit"
	"vigil/pkg/platform/httputil"
)

// AuditHandler exposes the decrypted audit trail to admins. Reading the log
// is itself not audited: listing operations append no entries.
type AuditHandler struct {
	service *audit.Service
	logger  *slog.Logger
}

func NewAuditHandler(service *audit.Service, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{service: service, logger: logger}
}

// Register mounts the audit endpoints; callers wrap them in RequireAdmin.
func (h *AuditHandler) Register(r chi.Router) {
	r.Get("/audit/logs", h.HandleList)
}

type auditEntryResponse struct {
	Timestamp  time.Time `json:"timestamp"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	SourceAddr string    `json:"source_address"`
}

func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.service.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]auditEntryResponse, 0, len(events))
	for _, event := range events {
		out = append(out, auditEntryResponse{
			Timestamp:  event.Timestamp,
			Actor:      event.Actor,
			Action:     event.Action,
			SourceAddr: event.SourceAddr,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"logs": out})
}
