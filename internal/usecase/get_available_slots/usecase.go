package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/slots"
)

// UseCase use case получения свободного времени на дату
type UseCase struct {
	schedule     ScheduleProvider
	bookingRepo  BookingRepository
	calendar     CalendarClient
	calendarID   string
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	schedule ScheduleProvider,
	bookingRepo BookingRepository,
	calendar CalendarClient,
	calendarID string,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		schedule:     schedule,
		bookingRepo:  bookingRepo,
		calendar:     calendar,
		calendarID:   calendarID,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения свободного времени
//
// Кандидаты строятся по расписанию, затем из них убираются прошедшие слоты,
// слоты ближе минимального срока записи, занятые в журнале бронирований
// и пересекающиеся с занятостью календаря. Если календарь недоступен,
// ответ помечается как fallback и сверка с календарём пропускается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	config := uc.schedule.GetScheduleConfig(ctx)
	loc := slots.ResolveLocation(req.TimeZone, config)
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)

	uc.logger.Info("GetAvailableSlots: date=%s, zone=%s, config source=%s",
		date.Format(domain.DateFormat), loc, config.Source)

	resp := &Response{
		Date:        date,
		TimeZone:    loc.String(),
		SlotMinutes: config.SlotMinutes,
	}

	// 1. Кандидаты по расписанию
	candidates := slots.ComputeSlotsForDate(date, config)

	// 2. Ограничения по времени записи
	now := uc.timeProvider.Now()
	earliest := now.Add(time.Duration(config.MinAdvanceHours) * time.Hour)
	candidates = slots.FilterFrom(candidates, date, loc, earliest)

	dayStart, dayEnd := slots.DayBounds(date, loc)
	if config.HasAdvanceBookingLimit() && dayStart.After(now.AddDate(0, 0, config.MaxAdvanceDays)) {
		candidates = candidates[:0]
	}

	if len(candidates) == 0 {
		resp.AvailableTimes = candidates
		uc.metrics.IncAvailability(modeLive)
		return resp, nil
	}

	// 3. Журнал бронирований
	bookings, err := uc.bookingRepo.ListActiveByRange(ctx, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list bookings for %s: %v", date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: failed to list bookings: %v", ErrInternal, err)
	}
	busy := slots.BookingsAsBusy(bookings)

	// 4. Занятость во внешнем календаре
	calendarBusy, err := uc.calendar.QueryFreeBusy(ctx, uc.calendarID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: calendar unavailable, returning unverified slots: %v", err)
		resp.AvailableTimes = slots.FilterAvailable(candidates, busy, date, config.SlotMinutes, loc)
		resp.Fallback = true
		resp.Message = fallbackMessage
		uc.metrics.IncAvailability(modeFallback)
		return resp, nil
	}

	busy = append(busy, calendarBusy...)
	resp.AvailableTimes = slots.FilterAvailable(candidates, busy, date, config.SlotMinutes, loc)
	uc.metrics.IncAvailability(modeLive)

	uc.logger.Info("GetAvailableSlots: %d of %d slots available on %s",
		len(resp.AvailableTimes), len(candidates), date.Format(domain.DateFormat))

	return resp, nil
}
