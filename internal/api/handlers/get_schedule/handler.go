package get_schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/internal/service/bookings"
	"github.com/m04kA/SMC-LessonService/internal/service/bookings/models"
)

const (
	msgInvalidDate   = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus = "некорректный статус занятия"
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/schedule/bookings?from=2025-10-01&to=2025-10-31&status=scheduled&includeInactive=true
// Доступно только админам и репетиторам
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /schedule/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	role, ok := middleware.GetRole(r.Context())
	if !ok {
		role = domain.RoleStudent
	}

	req := &models.GetScheduleRequest{
		RequesterID: requesterID,
		Role:        role,
	}

	query := r.URL.Query()

	if fromStr := query.Get("from"); fromStr != "" {
		from, err := time.Parse(domain.DateFormat, fromStr)
		if err != nil {
			h.logger.Warn("GET /schedule/bookings - Invalid from date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.StartDate = &from
	}

	if toStr := query.Get("to"); toStr != "" {
		to, err := time.Parse(domain.DateFormat, toStr)
		if err != nil {
			h.logger.Warn("GET /schedule/bookings - Invalid to date: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.EndDate = &to
	}

	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	req.IncludeInactive = query.Get("includeInactive") == "true"

	result, err := h.service.GetSchedule(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /schedule/bookings - Access denied: requester_id=%d, role=%s", requesterID, role)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /schedule/bookings - Invalid status filter: requester_id=%d", requesterID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /schedule/bookings - Failed to get schedule: requester_id=%d, error=%v", requesterID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /schedule/bookings - Retrieved %d bookings: requester_id=%d", len(result.Bookings), requesterID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
