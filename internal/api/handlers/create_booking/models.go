package create_booking

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	Name          string            `json:"name" validate:"required,max=120"`
	Email         string            `json:"email" validate:"required,email,max=254"`
	Phone         *string           `json:"phone,omitempty" validate:"omitempty,max=32"`
	Date          string            `json:"date" validate:"required,ymd"`  // "2025-11-03"
	Time          string            `json:"time" validate:"required,hhmm"` // "09:00"
	SessionType   string            `json:"sessionType" validate:"required,session_type"`
	TimeZone      string            `json:"timeZone,omitempty" validate:"omitempty,timezone"`
	Notes         *string           `json:"notes,omitempty" validate:"omitempty,max=500"`
	Locale        string            `json:"locale,omitempty" validate:"omitempty,max=16"`
	ReminderOptIn *bool             `json:"reminderOptIn,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty" validate:"omitempty,max=20,dive,keys,required,max=64,endkeys,max=256"`
}

// BookingView HTTP model созданного бронирования
type BookingView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	SessionType string `json:"sessionType"`
	StartTime   string `json:"startTime"` // RFC 3339, UTC
	EndTime     string `json:"endTime"`
	TimeZone    string `json:"timeZone"`
	Date        string `json:"date"` // в зоне бронирования
	Time        string `json:"time"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// CreateBookingResponse HTTP response model
type CreateBookingResponse struct {
	Success bool         `json:"success"`
	Booking *BookingView `json:"booking"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(r.Date))
	if err != nil {
		return nil, err
	}

	// Парсим время
	startTime, err := types.NewTimeStringFromString(r.Time)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		Date:          date,
		Time:          startTime,
		SessionType:   domain.SessionType(r.SessionType),
		TimeZone:      r.TimeZone,
		Notes:         r.Notes,
		Locale:        r.Locale,
		ReminderOptIn: r.ReminderOptIn,
		Metadata:      r.Metadata,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	b := resp.Booking
	local := b.StartTime.In(b.Location())

	return &CreateBookingResponse{
		Success: true,
		Booking: &BookingView{
			ID:          b.ID.String(),
			Name:        b.CustomerName,
			Email:       b.CustomerEmail,
			SessionType: string(b.SessionType),
			StartTime:   b.StartTime.UTC().Format(time.RFC3339),
			EndTime:     b.EndTime.UTC().Format(time.RFC3339),
			TimeZone:    b.TimeZone,
			Date:        local.Format(domain.DateFormat),
			Time:        local.Format(domain.TimeFormat),
			Status:      string(b.Status),
			CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
}
