package create_series

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	"github.com/m04kA/SMC-LessonService/internal/domain"
	createSeries "github.com/m04kA/SMC-LessonService/internal/usecase/create_series"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSeriesUnavailable  = "одно из занятий серии недоступно, серия не создана"
	msgSlotConflict       = "один из слотов серии только что заняли, серия не создана"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase CreateSeriesUseCase
	logger  Logger
}

func NewHandler(useCase CreateSeriesUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/series
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateSeriesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/series - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings/series - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings/series - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		// Первое недоступное занятие серии отдаем клиенту с датой и причиной
		var occErr *createSeries.OccurrenceUnavailableError
		if errors.As(err, &occErr) {
			h.logger.Warn("POST /bookings/series - Occurrence unavailable: user_id=%d, sequence=%d, date=%s, reason=%s",
				userID, occErr.Sequence, occErr.Date.Format(domain.DateFormat), occErr.Reason)
			handlers.RespondJSON(w, http.StatusConflict, UnavailableOccurrenceResponse{
				Error:    msgSeriesUnavailable,
				Sequence: occErr.Sequence,
				Date:     occErr.Date.Format(domain.DateFormat),
				Reason:   string(occErr.Reason),
			})
			return
		}

		switch {
		case errors.Is(err, createSeries.ErrSlotConflict):
			h.logger.Warn("POST /bookings/series - Concurrent booking conflict: user_id=%d, anchor=%s", userID, req.AnchorDate)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, createSeries.ErrInvalidInput):
			h.logger.Warn("POST /bookings/series - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings/series - Failed to create series: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings/series - Series created successfully: series_id=%s, user_id=%d, total=%d",
		result.SeriesID, userID, result.Total)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
