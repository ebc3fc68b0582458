package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/types"
)

// Reason код причины отказа в бронировании слота
// Пустая строка означает, что слот доступен
// Коды входят в контракт API: UI показывает разные подсказки для каждого
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonSlotNotOffered Reason = "slot_not_offered"
	ReasonTooSoon        Reason = "too_soon"
	ReasonAlreadyBooked  Reason = "already_booked"
	ReasonCapacityFull   Reason = "capacity_full"
)

// ErrInternal возвращается при внутренних ошибках сервиса
var ErrInternal = fmt.Errorf("availability: internal error")

// Service единственный источник истины о доступности слотов
// Все точки входа (одиночная запись, серия, список слотов) обязаны
// проверять доступность только здесь, без дублирования логики
type Service struct {
	bookingRepo  BookingRepository
	schedule     domain.WeeklySchedule
	rules        domain.BookingRules
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	bookingRepo BookingRepository,
	schedule domain.WeeklySchedule,
	rules domain.BookingRules,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:  bookingRepo,
		schedule:     schedule,
		rules:        rules,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Check проверяет доступность слота для НОВОЙ записи вида kind
// Отказ - не ошибка: возвращается код причины; error только для сбоев хранилища
//
// Порядок проверок:
// 1. Слот существует в недельном шаблоне
// 2. До начала занятия не меньше NoticeHours (правило 24 часов, единое
//    для одиночной записи и первого занятия серии)
// 3. Слот не занят: для индивидуального занятия - ни одной активной строки,
//    для группового - счетчик вместимости
func (s *Service) Check(ctx context.Context, date time.Time, startTime types.TimeString, kind domain.ServiceKind) (Reason, error) {
	now := s.timeProvider.Now()

	if !IsCalendarSlot(s.schedule, date, startTime, now) {
		return ReasonSlotNotOffered, nil
	}

	lessonStart := startTime.OnDate(date)
	if lessonStart.Sub(now) < time.Duration(s.rules.NoticeHours)*time.Hour {
		return ReasonTooSoon, nil
	}

	active, err := s.bookingRepo.GetActiveBySlot(ctx, date, startTime.String())
	if err != nil {
		return ReasonNone, fmt.Errorf("%w: Check - failed to get slot bookings: %v", ErrInternal, err)
	}

	return s.checkOccupancy(active, kind), nil
}

// SlotStatus слот дня с занятостью и причиной недоступности (если есть)
type SlotStatus struct {
	StartTime       types.TimeString
	DurationMinutes int
	AvailableSpots  int
	TotalSpots      int
	Bookable        bool
	Reason          Reason
}

// DayOverview возвращает все слоты шаблона на дату с занятостью и доступностью
// для записи вида kind. Занятия дня выбираются одним запросом
func (s *Service) DayOverview(ctx context.Context, date time.Time, kind domain.ServiceKind) ([]SlotStatus, error) {
	now := s.timeProvider.Now()

	slots := ListSlotsForDate(s.schedule, date, now)
	if len(slots) == 0 {
		return []SlotStatus{}, nil
	}

	active, err := s.bookingRepo.GetActiveByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%w: DayOverview - failed to get day bookings: %v", ErrInternal, err)
	}

	bySlot := make(map[types.TimeString][]*domain.Booking)
	for _, b := range active {
		bySlot[b.StartTime] = append(bySlot[b.StartTime], b)
	}

	result := make([]SlotStatus, 0, len(slots))
	for _, slot := range slots {
		slotBookings := bySlot[slot]

		status := SlotStatus{
			StartTime:       slot,
			DurationMinutes: s.schedule.SlotDurationMinutes,
			TotalSpots:      s.rules.GroupCapacity,
			AvailableSpots:  s.availableSpots(slotBookings),
		}

		lessonStart := slot.OnDate(date)
		switch {
		case lessonStart.Sub(now) < time.Duration(s.rules.NoticeHours)*time.Hour:
			status.Reason = ReasonTooSoon
		default:
			status.Reason = s.checkOccupancy(slotBookings, kind)
		}
		status.Bookable = status.Reason == ReasonNone

		result = append(result, status)
	}

	return result, nil
}

func (s *Service) availableSpots(active []*domain.Booking) int {
	occupied := 0
	for _, b := range active {
		if b.ServiceKind != domain.KindGroup {
			if b.PaymentStatus == domain.PaymentRefunded {
				// Возвращенное индивидуальное занятие слот не занимает
				continue
			}
			// Индивидуальное занятие занимает слот целиком
			return 0
		}
		occupied++
	}

	spots := s.rules.GroupCapacity - occupied
	if spots < 0 {
		spots = 0
	}
	return spots
}

// checkOccupancy применяет правила занятости к активным строкам слота
//
// Статус - единственный авторитет занятости: отмененная строка не блокирует
// слот независимо от статуса оплаты (даже если возврат средств не прошёл).
// Исключение в обратную сторону: scheduled-строка с возвращенной оплатой
// индивидуального занятия тоже не блокирует - деньги уже вернули
func (s *Service) checkOccupancy(active []*domain.Booking, kind domain.ServiceKind) Reason {
	groupCount := 0

	for _, b := range active {
		if b.ServiceKind == domain.KindGroup {
			groupCount++
			continue
		}
		if b.PaymentStatus == domain.PaymentRefunded {
			continue
		}
		// Активное индивидуальное занятие блокирует слот для любых запросов
		return ReasonAlreadyBooked
	}

	if kind == domain.KindGroup {
		if groupCount >= s.rules.GroupCapacity {
			return ReasonCapacityFull
		}
		return ReasonNone
	}

	// Индивидуальная запись несовместима с уже идущей группой
	if groupCount > 0 {
		return ReasonAlreadyBooked
	}

	return ReasonNone
}

// Schedule возвращает недельный шаблон (для календаря и конфиг-эндпоинта)
func (s *Service) Schedule() domain.WeeklySchedule {
	return s.schedule
}

// Rules возвращает правила записи
func (s *Service) Rules() domain.BookingRules {
	return s.rules
}
