package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-scheduler/internal/delivery/http/middleware"
	"clinic-scheduler/internal/domain/entity"
	"clinic-scheduler/pkg/apperror"
	"clinic-scheduler/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// writeError maps a categorized error onto an HTTP status. Authorization
// failures share one body; the specific reason goes to the log only.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		response.InternalServerError(w, fallback)
		return
	}

	body := response.ErrorBody{Code: appErr.Code}
	switch appErr.Category {
	case apperror.CategoryAuthentication:
		response.Error(w, http.StatusUnauthorized, appErr.Message, body)
	case apperror.CategoryAuthorization:
		logrus.WithField("reason", appErr.Code).Info("Access denied")
		response.Error(w, http.StatusForbidden, "Access denied", response.ErrorBody{Code: apperror.AccessDeniedCode})
	case apperror.CategoryValidation:
		response.Error(w, http.StatusBadRequest, appErr.Message, body)
	case apperror.CategoryNotFound:
		response.Error(w, http.StatusNotFound, appErr.Message, body)
	case apperror.CategoryConflict, apperror.CategoryDomainState:
		response.Error(w, http.StatusConflict, appErr.Message, body)
	default:
		if errors.Is(err, apperror.ErrTimeout) {
			response.Error(w, http.StatusGatewayTimeout, "Request timed out", body)
			return
		}
		response.Error(w, http.StatusInternalServerError, fallback, body)
	}
}

func principalFrom(w http.ResponseWriter, r *http.Request) (entity.Principal, bool) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
	}
	return principal, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID",
			response.ErrorBody{Code: apperror.ErrInvalidField.Code})
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads page and limit from the query string, clamping to sane bounds.
func pagination(r *http.Request) (int, int) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func pageMeta(page, limit int, total int64) *response.Meta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
