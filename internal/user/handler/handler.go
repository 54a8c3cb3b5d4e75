// Package handler exposes the user service over HTTP.
package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kycore/internal/platform/logger"
	"kycore/internal/user/models"
	"kycore/pkg/domain"
	dErrors "kycore/pkg/domain-errors"
	"kycore/pkg/platform/httputil"
	"kycore/pkg/platform/middleware/auth"
	"kycore/pkg/platform/middleware/request"
	"kycore/pkg/query"
	"kycore/pkg/repository"
	"kycore/pkg/requestcontext"
)

const (
	controller = "UserController"

	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service defines the user operations the handler needs.
type Service interface {
	CreateUser(ctx context.Context, email string) (*models.User, error)
	GetUser(ctx context.Context, id domain.ID) (*models.User, error)
	ListUsers(ctx context.Context, filters models.Filters, page repository.Pagination) (repository.Page[*models.User], error)
	ChangeKYCStatus(ctx context.Context, id domain.ID, status models.KYCStatus) (*models.User, error)
	UpdateMetadata(ctx context.Context, id domain.ID, doc domain.Document) (*models.User, error)
}

type Handler struct {
	users  Service
	logger *logger.Logger
}

func New(users Service, log *logger.Logger) *Handler {
	return &Handler{users: users, logger: log}
}

// Register mounts the user routes. Registration is public; everything else needs
// an authenticated user, and writes are limited to the caller's own account.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", request.Handler(controller, "CreateUser", h.handleCreateUser))
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)
		r.Get("/users", request.Handler(controller, "ListUsers", h.handleListUsers))
		r.Get("/users/me", request.Handler(controller, "GetCurrentUser", h.handleGetCurrentUser))
		r.Get("/users/{id}", request.Handler(controller, "GetUser", h.handleGetUser))
		r.Patch("/users/{id}/kyc-status", request.Handler(controller, "ChangeKYCStatus", h.handleChangeKYCStatus))
		r.Put("/users/{id}/metadata", request.Handler(controller, "UpdateMetadata", h.handleUpdateMetadata))
	})
}

type CreateUserRequest struct {
	Email string `json:"email"`
}

type ChangeKYCStatusRequest struct {
	KYCStatus string `json:"kyc_status"`
}

type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	KYCStatus string          `json:"kyc_status"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type ListUsersResponse struct {
	Data  []UserResponse `json:"data"`
	Count int64          `json:"count"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func toResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID().String(),
		Email:     u.Email().String(),
		KYCStatus: string(u.KYCStatus()),
		Metadata:  u.Metadata().Bytes(),
		CreatedAt: u.CreatedAt().String(),
		UpdatedAt: u.UpdatedAt().String(),
	}
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.Warn(ctx, "invalid create user request", "error", err)
		httputil.WriteError(w, err)
		return
	}

	user, err := h.users.CreateUser(ctx, req.Email)
	if err != nil {
		h.fail(ctx, w, err, "failed to create user")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(user))
}

func (h *Handler) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := requestcontext.UserID(ctx)
	if !ok {
		// RequireUser guards this route.
		h.logger.Error(ctx, nil, "user id missing from request context despite auth middleware")
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}
	h.writeUser(w, r, userID)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeUser(w, r, id)
}

func (h *Handler) writeUser(w http.ResponseWriter, r *http.Request, id domain.ID) {
	user, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		h.fail(r.Context(), w, err, "failed to get user")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filters, page, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.users.ListUsers(ctx, filters, page)
	if err != nil {
		h.fail(ctx, w, err, "failed to list users")
		return
	}
	resp := ListUsersResponse{
		Data:  make([]UserResponse, 0, len(result.Data)),
		Count: result.Count,
		Page:  result.Page,
		Limit: result.Limit,
	}
	for _, u := range result.Data {
		resp.Data = append(resp.Data, toResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func parseListQuery(r *http.Request) (models.Filters, repository.Pagination, error) {
	q := r.URL.Query()
	var filters models.Filters

	if raw := q.Get("kyc_status"); raw != "" {
		status, err := models.KYCStatuses.Parse(raw)
		if err != nil {
			return filters, repository.Pagination{}, err
		}
		filters.KYCStatus = query.Value(status)
	}
	if raw := q.Get("email"); raw != "" {
		filters.Email = query.Match[domain.Email](query.ILike(query.EscapeLike(raw)))
	}
	if key := q.Get("metadata_key"); key != "" {
		filters.Metadata = query.Match[domain.Document](query.JSONHasKey(key))
	}

	page := repository.Pagination{Page: 1, Limit: defaultPageLimit}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return filters, page, dErrors.New(dErrors.CodeBadRequest, "page must be a positive integer")
		}
		page.Page = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			return filters, page, dErrors.Newf(dErrors.CodeBadRequest, "limit must be between 1 and %d", maxPageLimit)
		}
		page.Limit = n
	}
	return filters, page, nil
}

func (h *Handler) handleChangeKYCStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := callerOwns(r)
	if err != nil {
		h.logger.Warn(ctx, "rejected write to user", "error", err)
		httputil.WriteError(w, err)
		return
	}
	var req ChangeKYCStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.users.ChangeKYCStatus(ctx, id, models.KYCStatus(req.KYCStatus))
	if err != nil {
		h.fail(ctx, w, err, "failed to change kyc status")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) handleUpdateMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := callerOwns(r)
	if err != nil {
		h.logger.Warn(ctx, "rejected write to user", "error", err)
		httputil.WriteError(w, err)
		return
	}
	var raw json.RawMessage
	if err := httputil.DecodeJSON(r, &raw); err != nil {
		httputil.WriteError(w, err)
		return
	}
	doc, err := domain.ParseDocument(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.users.UpdateMetadata(ctx, id, doc)
	if err != nil {
		h.fail(ctx, w, err, "failed to update metadata")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(user))
}

// callerOwns returns the {id} path parameter when it names the authenticated
// caller.
func callerOwns(r *http.Request) (domain.ID, error) {
	id, err := domain.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		return domain.ID{}, err
	}
	caller, ok := requestcontext.UserID(r.Context())
	if !ok {
		return domain.ID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !caller.Equal(id) {
		return domain.ID{}, dErrors.New(dErrors.CodeForbidden, "users may only modify their own account")
	}
	return id, nil
}

// fail logs err at a level matching its status and writes it.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if httputil.StatusOf(err) >= http.StatusInternalServerError {
		h.logger.Error(ctx, err, msg)
	} else {
		h.logger.Warn(ctx, msg, "error", err)
	}
	httputil.WriteError(w, err)
}
