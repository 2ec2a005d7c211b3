package models

import (
	"errors"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// GetDayScheduleRequest запрос расписания на дату
type GetDayScheduleRequest struct {
	Date     time.Time
	TimeZone string
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Phone       *string           `json:"phone,omitempty"`
	SessionType string            `json:"sessionType"`
	StartTime   time.Time         `json:"startTime"` // RFC 3339, UTC
	EndTime     time.Time         `json:"endTime"`
	TimeZone    string            `json:"timeZone"`
	LocalDate   string            `json:"localDate"` // "2025-11-03" в зоне бронирования
	LocalTime   string            `json:"localTime"` // "09:00" в зоне бронирования
	Status      string            `json:"status"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// DayScheduleResponse занятое и свободное время на дату
type DayScheduleResponse struct {
	Date           string             `json:"date"`
	TimeZone       string             `json:"timeZone"`
	BookedTimes    []types.TimeString `json:"bookedTimes"`
	AvailableTimes []types.TimeString `json:"availableTimes"`
	SlotMinutes    int                `json:"slotMinutes"`
	Fallback       bool               `json:"fallback,omitempty"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	local := b.StartTime.In(b.Location())

	resp := &BookingResponse{
		ID:                 b.ID.String(),
		Name:               b.CustomerName,
		Email:              b.CustomerEmail,
		Phone:              b.CustomerPhone,
		SessionType:        string(b.SessionType),
		StartTime:          b.StartTime.UTC(),
		EndTime:            b.EndTime.UTC(),
		TimeZone:           b.TimeZone,
		LocalDate:          local.Format(domain.DateFormat),
		LocalTime:          local.Format(domain.TimeFormat),
		Status:             string(b.Status),
		Metadata:           b.Metadata,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.UTC().Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
// Отмена выполняется отдельной операцией, поэтому cancelled здесь недопустим
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	switch s {
	case domain.StatusConfirmed, domain.StatusCompleted, domain.StatusNoShow:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}
