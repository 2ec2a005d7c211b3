package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifier"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/internal/slots"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo    BookingRepository
	reminderRepo   ReminderRepository
	engagementRepo EngagementRepository
	availability   AvailabilityUseCase
	schedule       ScheduleProvider
	notifier       Notifier
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	reminderRepo ReminderRepository,
	engagementRepo EngagementRepository,
	availability AvailabilityUseCase,
	schedule ScheduleProvider,
	notifier Notifier,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:    bookingRepo,
		reminderRepo:   reminderRepo,
		engagementRepo: engagementRepo,
		availability:   availability,
		schedule:       schedule,
		notifier:       notifier,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// GetByID получает бронирование по ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.BookingResponse, error) {
	booking, err := s.getBooking(ctx, "GetByID", id)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(booking), nil
}

// GetCustomerBookings получает историю бронирований клиента, новые первыми
func (s *Service) GetCustomerBookings(ctx context.Context, email string) (*models.BookingListResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	s.logger.Info("GetCustomerBookings: fetching bookings for email=%s", email)

	bookings, err := s.bookingRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("GetCustomerBookings: repository error for email=%s: %v", email, err)
		return nil, fmt.Errorf("%w: GetCustomerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCustomerBookings: found %d bookings for email=%s", len(bookings), email)
	return models.FromDomainBookingList(bookings), nil
}

// GetDaySchedule возвращает занятое и свободное время на дату
func (s *Service) GetDaySchedule(ctx context.Context, req *models.GetDayScheduleRequest) (*models.DayScheduleResponse, error) {
	if req == nil || req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	config := s.schedule.GetScheduleConfig(ctx)
	loc := slots.ResolveLocation(req.TimeZone, config)

	booked, err := s.bookingRepo.ListBookedTimes(ctx, req.Date, loc)
	if err != nil {
		s.logger.Error("GetDaySchedule: failed to list booked times for %s: %v", req.Date.Format(domain.DateFormat), err)
		return nil, fmt.Errorf("%w: GetDaySchedule - repository error: %v", ErrInternal, err)
	}

	available, err := s.availability.Execute(ctx, &get_available_slots.Request{
		Date:     req.Date,
		TimeZone: loc.String(),
	})
	if err != nil {
		if errors.Is(err, get_available_slots.ErrInvalidInput) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		s.logger.Error("GetDaySchedule: failed to compute availability: %v", err)
		return nil, fmt.Errorf("%w: GetDaySchedule - availability error: %v", ErrInternal, err)
	}

	return &models.DayScheduleResponse{
		Date:           req.Date.Format(domain.DateFormat),
		TimeZone:       available.TimeZone,
		BookedTimes:    booked,
		AvailableTimes: available.AvailableTimes,
		SlotMinutes:    available.SlotMinutes,
		Fallback:       available.Fallback,
	}, nil
}

// Cancel отменяет бронирование и его ожидающие напоминания
// Освобождённый слот снова доступен для записи
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%s", id)

	var reason *string
	if req != nil && req.CancellationReason != nil {
		trimmed := strings.TrimSpace(*req.CancellationReason)
		if utf8.RuneCountInString(trimmed) > domain.MaxCancellationReasonLength {
			return nil, fmt.Errorf("%w: cancellation reason must be at most %d characters",
				ErrInvalidInput, domain.MaxCancellationReasonLength)
		}
		if trimmed != "" {
			reason = &trimmed
		}
	}

	booking, err := s.getBooking(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	// Проверяем, можно ли отменить бронирование
	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%s cannot be cancelled, status=%s", id, booking.Status)
		return nil, ErrCannotCancel
	}

	now := s.timeProvider.Now()
	config := s.schedule.GetScheduleConfig(ctx)
	if config.CancellationHours > 0 {
		deadline := booking.StartTime.Add(-time.Duration(config.CancellationHours) * time.Hour)
		if now.After(deadline) {
			s.logger.Warn("Cancel: booking id=%s is inside the %dh cancellation window", id, config.CancellationHours)
			return nil, ErrCancellationWindowClosed
		}
	}

	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if err := s.bookingRepo.Cancel(txCtx, id, reason, now); err != nil {
			return err
		}
		cancelled, err := s.reminderRepo.CancelPending(txCtx, id)
		if err != nil {
			return err
		}
		s.logger.Info("Cancel: %d pending reminders cancelled for booking id=%s", cancelled, id)
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrCannotCancel):
			s.logger.Warn("Cancel: booking id=%s changed status concurrently", id)
			return nil, ErrCannotCancel
		}
		s.logger.Error("Cancel: failed to cancel booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	booking, err = s.getBooking(ctx, "Cancel", id)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyCancelled(context.WithoutCancel(ctx), booking); err != nil && !errors.Is(err, notifier.ErrDisabled) {
		s.logger.Warn("Cancel: failed to notify cancellation of booking id=%s: %v", id, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%s", id)
	return models.FromDomainBooking(booking), nil
}

// UpdateStatus отмечает итог сессии (completed, no_show) и обновляет этап жизненного цикла
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}

	s.logger.Info("UpdateStatus: updating booking id=%s to status=%s", id, req.Status)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%s", req.Status, id)
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	booking, err := s.getBooking(ctx, "UpdateStatus", id)
	if err != nil {
		return nil, err
	}
	if !booking.IsActive() {
		s.logger.Warn("UpdateStatus: booking id=%s is cancelled", id)
		return nil, ErrCannotUpdateStatus
	}

	// Отмена могла зафиксироваться после чтения: окончательно решает условие в UPDATE
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		return s.bookingRepo.UpdateStatus(txCtx, id, newStatus)
	})
	if err != nil {
		switch {
		case errors.Is(err, bookingRepo.ErrBookingNotFound):
			return nil, ErrBookingNotFound
		case errors.Is(err, bookingRepo.ErrCannotUpdateStatus):
			s.logger.Warn("UpdateStatus: booking id=%s was cancelled concurrently", id)
			return nil, ErrCannotUpdateStatus
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if stage, ok := engagementStage(newStatus); ok {
		if err := s.engagementRepo.UpdateStage(ctx, id, stage); err != nil {
			s.logger.Warn("UpdateStatus: failed to update engagement of booking id=%s: %v", id, err)
		}
	}

	booking.Status = newStatus
	s.logger.Info("UpdateStatus: successfully updated booking id=%s to status=%s", id, newStatus)
	return models.FromDomainBooking(booking), nil
}

// Вспомогательные методы

func (s *Service) getBooking(ctx context.Context, op string, id uuid.UUID) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%s not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%s: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

// engagementStage этап жизненного цикла для итогового статуса
func engagementStage(status domain.BookingStatus) (domain.EngagementStage, bool) {
	switch status {
	case domain.StatusCompleted:
		return domain.EngagementAttended, true
	case domain.StatusNoShow:
		return domain.EngagementNoShow, true
	default:
		return "", false
	}
}
