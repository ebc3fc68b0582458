package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
	"github.com/m04kA/SMC-LessonService/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-LessonService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotNotOffered     = "выбранный слот отсутствует в расписании"
	msgTooSoon            = "до начала занятия меньше 24 часов"
	msgAlreadyBooked      = "выбранный слот уже занят"
	msgCapacityFull       = "в групповом занятии не осталось мест"
	msgSlotConflict       = "слот только что заняли, выберите другой"
	msgInvalidInput       = "некорректные данные запроса"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotNotOffered):
			h.logger.Warn("POST /bookings - Slot not offered: user_id=%d, date=%s, time=%s", userID, req.LessonDate, req.StartTime)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgSlotNotOffered)

		case errors.Is(err, createBooking.ErrTooSoon):
			h.logger.Warn("POST /bookings - Too soon to book: user_id=%d, date=%s, time=%s", userID, req.LessonDate, req.StartTime)
			handlers.RespondError(w, http.StatusUnprocessableEntity, msgTooSoon)

		case errors.Is(err, createBooking.ErrAlreadyBooked):
			h.logger.Warn("POST /bookings - Slot already booked: user_id=%d, date=%s, time=%s", userID, req.LessonDate, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgAlreadyBooked)

		case errors.Is(err, createBooking.ErrCapacityFull):
			h.logger.Warn("POST /bookings - Group slot full: user_id=%d, date=%s, time=%s", userID, req.LessonDate, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgCapacityFull)

		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Concurrent booking conflict: user_id=%d, date=%s, time=%s", userID, req.LessonDate, req.StartTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, error=%v", userID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, user_id=%d", result.ID, userID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
