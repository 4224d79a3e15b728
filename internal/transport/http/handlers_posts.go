package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigil/internal/post"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
)

// PostHandler exposes post management for authenticated callers.
type PostHandler struct {
	service *post.Service
	logger  *slog.Logger
}

func NewPostHandler(service *post.Service, logger *slog.Logger) *PostHandler {
	return &PostHandler{service: service, logger: logger}
}

func (h *PostHandler) Register(r chi.Router) {
	r.Post("/posts", h.HandleCreate)
	r.Get("/posts", h.HandleList)
	r.Put("/posts/{id}", h.HandleUpdate)
	r.Delete("/posts/{id}", h.HandleDelete)
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostResponse(p post.Post) postResponse {
	return postResponse{
		ID:        p.ID.String(),
		Title:     p.Title,
		Content:   p.Content,
		AuthorID:  p.AuthorID.String(),
		CreatedAt: p.CreatedAt,
	}
}

func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[postRequest](w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, principalFrom(ctx), req.Title, req.Content)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toPostResponse(created))
}

func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	posts, err := h.service.List(ctx, principalFrom(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid post id"))
		return
	}
	req, ok := httputil.Decode[postRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.Update(ctx, principalFrom(ctx), id, req.Title, req.Content); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid post id"))
		return
	}

	if err := h.service.Delete(ctx, principalFrom(ctx), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
