package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vigil/internal/auth"
	"vigil/internal/user"
	dErrors "vigil/pkg/domain-errors"
	"vigil/pkg/platform/httputil"
)

// UserHandler exposes user management. All routes sit behind RequireAuth;
// the admin-only ones are additionally gated in the service.
type UserHandler struct {
	service *user.Service
	logger  *slog.Logger
}

func NewUserHandler(service *user.Service, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

func (h *UserHandler) Register(r chi.Router) {
	r.Post("/users", h.HandleCreate)
	r.Get("/users", h.HandleList)
	r.Put("/users/{id}", h.HandleUpdate)
	r.Delete("/users/{id}", h.HandleDelete)
	r.Post("/users/password", h.HandleChangePassword)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u auth.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[createUserRequest](w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(ctx, principalFrom(ctx), req.Username, req.Password, auth.Role(req.Role))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(created))
}

func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.service.List(ctx, principalFrom(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	req, ok := httputil.Decode[updateUserRequest](w, r)
	if !ok {
		return
	}

	update := user.UpdateRequest{
		Username: req.Username,
		Password: req.Password,
	}
	if req.Role != nil {
		role := auth.Role(*req.Role)
		update.Role = &role
	}

	if err := h.service.Update(ctx, principalFrom(ctx), id, update); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	if err := h.service.Delete(ctx, principalFrom(ctx), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (h *UserHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[changePasswordRequest](w, r)
	if !ok {
		return
	}

	if err := h.service.ChangePassword(ctx, principalFrom(ctx), req.NewPassword); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "password_updated"})
}
