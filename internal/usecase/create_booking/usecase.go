package create_booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	"github.com/m04kA/SMC-AppointmentService/internal/slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// DefaultReminderOffsets смещения напоминаний по умолчанию
var DefaultReminderOffsets = []time.Duration{24 * time.Hour, 2 * time.Hour}

// UseCase use case для создания бронирования
type UseCase struct {
	schedule        ScheduleProvider
	bookingRepo     BookingRepository
	profileRepo     ProfileRepository
	reminderRepo    ReminderRepository
	engagementRepo  EngagementRepository
	notifier        Notifier
	reminderOffsets []time.Duration
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// Пустой reminderOffsets означает смещения по умолчанию (24h, 2h)
func NewUseCase(
	schedule ScheduleProvider,
	bookingRepo BookingRepository,
	profileRepo ProfileRepository,
	reminderRepo ReminderRepository,
	engagementRepo EngagementRepository,
	notifier Notifier,
	reminderOffsets []time.Duration,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if len(reminderOffsets) == 0 {
		reminderOffsets = DefaultReminderOffsets
	}
	return &UseCase{
		schedule:        schedule,
		bookingRepo:     bookingRepo,
		profileRepo:     profileRepo,
		reminderRepo:    reminderRepo,
		engagementRepo:  engagementRepo,
		notifier:        notifier,
		reminderOffsets: reminderOffsets,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования
//
// Единственность слота гарантирует уникальный индекс журнала: если две попытки
// проходят проверки одновременно, вторая получает ErrSlotAlreadyBooked при вставке.
// Побочные эффекты выполняются после фиксации и на результат не влияют.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.metrics.IncBooking(outcomeRejected)
		return nil, err
	}

	uc.logger.Info("CreateBooking: email=%s, date=%s, time=%s, session=%s",
		req.Email, req.Date.Format(domain.DateFormat), req.Time, req.SessionType)

	// 2. Конфигурация расписания и зона
	config := uc.schedule.GetScheduleConfig(ctx)
	loc := slots.ResolveLocation(req.TimeZone, config)
	date := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)
	now := uc.timeProvider.Now()

	// 3. Бизнес-правила
	start, err := uc.checkBusinessRules(date, req.Time, config, loc, now)
	if err != nil {
		uc.logger.Warn("CreateBooking: rejected %s %s: %v", date.Format(domain.DateFormat), req.Time, err)
		uc.metrics.IncBooking(outcomeRejected)
		return nil, err
	}
	end := start.Add(time.Duration(config.SlotMinutes) * time.Minute)

	// 4. Быстрая проверка занятости; окончательное решение принимает вставка
	booked, err := uc.bookingRepo.IsSlotBooked(ctx, start)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to check slot %s: %v", start.Format(time.RFC3339), err)
		uc.metrics.IncBooking(outcomeFailed)
		return nil, fmt.Errorf("%w: failed to check slot: %v", ErrInternal, err)
	}
	if booked {
		uc.logger.Warn("CreateBooking: slot %s already booked", start.Format(time.RFC3339))
		uc.metrics.IncBooking(outcomeConflict)
		return nil, ErrSlotAlreadyBooked
	}

	// 5. Вставка в журнал
	booking := &domain.Booking{
		CustomerName:  strings.TrimSpace(req.Name),
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.Email)),
		CustomerPhone: req.Phone,
		SessionType:   req.SessionType,
		StartTime:     start,
		EndTime:       end,
		TimeZone:      loc.String(),
		Metadata:      req.Metadata,
	}

	created, err := uc.bookingRepo.TryReserve(ctx, booking)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrSlotAlreadyBooked) {
			uc.logger.Warn("CreateBooking: lost race for slot %s", start.Format(time.RFC3339))
			uc.metrics.IncBooking(outcomeConflict)
			return nil, ErrSlotAlreadyBooked
		}
		uc.logger.Error("CreateBooking: failed to reserve slot %s: %v", start.Format(time.RFC3339), err)
		uc.metrics.IncBooking(outcomeFailed)
		return nil, fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
	}

	uc.metrics.IncBooking(outcomeCommitted)
	uc.logger.Info("CreateBooking: successfully created booking id=%s at %s",
		created.ID, created.StartTime.Format(time.RFC3339))

	// 6. Побочные эффекты не должны прерываться отменой запроса
	effects := uc.runSideEffects(context.WithoutCancel(ctx), req, created, loc, now)

	return &Response{
		Booking:     created,
		SideEffects: effects,
	}, nil
}

// checkBusinessRules проверяет день, слот и временные ограничения
// Возвращает момент начала сессии
func (uc *UseCase) checkBusinessRules(
	date time.Time,
	slot types.TimeString,
	config *domain.ScheduleConfig,
	loc *time.Location,
	now time.Time,
) (time.Time, error) {
	if !slots.IsWorkingDay(date, config) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrNonWorkingDay, date.Weekday())
	}

	if !slots.IsCandidate(date, slot, config) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidTimeSlot, slot)
	}

	start := slot.On(date, loc)
	if start.Before(now) {
		return time.Time{}, ErrSlotInPast
	}

	minAdvance := time.Duration(config.MinAdvanceHours) * time.Hour
	if start.Before(now.Add(minAdvance)) {
		return time.Time{}, fmt.Errorf("%w: at least %d hours in advance", ErrTooLateToBook, config.MinAdvanceHours)
	}

	if config.HasAdvanceBookingLimit() {
		dayStart, _ := slots.DayBounds(date, loc)
		if dayStart.After(now.AddDate(0, 0, config.MaxAdvanceDays)) {
			return time.Time{}, fmt.Errorf("%w: at most %d days ahead", ErrDateTooFarInFuture, config.MaxAdvanceDays)
		}
	}

	return start, nil
}

// runSideEffects выполняет независимые побочные эффекты после фиксации
// Ошибка одного эффекта не отменяет остальные
func (uc *UseCase) runSideEffects(
	ctx context.Context,
	req *Request,
	booking *domain.Booking,
	loc *time.Location,
	now time.Time,
) []SideEffectResult {
	tasks := []struct {
		name string
		run  func(context.Context) error
	}{
		{SideEffectProfile, func(ctx context.Context) error {
			_, err := uc.profileRepo.Upsert(ctx, buildProfile(req, booking, loc))
			return err
		}},
		{SideEffectReminders, func(ctx context.Context) error {
			if req.ReminderOptIn != nil && !*req.ReminderOptIn {
				return nil
			}
			return uc.reminderRepo.CreateBatch(ctx, buildReminders(booking, uc.reminderOffsets, now))
		}},
		{SideEffectEngagement, func(ctx context.Context) error {
			return uc.engagementRepo.Seed(ctx, booking.ID, domain.EngagementBooked)
		}},
		{SideEffectNotify, func(ctx context.Context) error {
			err := uc.notifier.NotifyConfirmed(ctx, booking)
			if errors.Is(err, notifier.ErrDisabled) {
				return nil
			}
			return err
		}},
	}

	results := make([]SideEffectResult, 0, len(tasks))
	for _, task := range tasks {
		err := task.run(ctx)
		if err != nil {
			uc.logger.Warn("CreateBooking: side effect %s failed for booking id=%s: %v", task.name, booking.ID, err)
			uc.metrics.IncSideEffectFailure(task.name)
		}
		results = append(results, SideEffectResult{Name: task.name, Err: err})
	}

	return results
}
