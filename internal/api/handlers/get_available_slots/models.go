package get_available_slots

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AvailabilityRequest HTTP request model
type AvailabilityRequest struct {
	Date     string `json:"date" validate:"required,ymd"`
	TimeZone string `json:"timeZone,omitempty" validate:"omitempty,timezone"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Date           string             `json:"date"`
	TimeZone       string             `json:"timeZone"`
	SlotMinutes    int                `json:"slotMinutes"`
	AvailableTimes []types.TimeString `json:"availableTimes"`
	Fallback       bool               `json:"fallback,omitempty"`
	Message        string             `json:"message,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *AvailabilityRequest) ToUseCaseRequest() (*getAvailableSlots.Request, error) {
	date, err := time.Parse(domain.DateFormat, strings.TrimSpace(r.Date))
	if err != nil {
		return nil, err
	}

	return &getAvailableSlots.Request{
		Date:     date,
		TimeZone: r.TimeZone,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailabilityResponse {
	times := resp.AvailableTimes
	if times == nil {
		times = []types.TimeString{}
	}

	return &AvailabilityResponse{
		Date:           resp.Date.Format(domain.DateFormat),
		TimeZone:       resp.TimeZone,
		SlotMinutes:    resp.SlotMinutes,
		AvailableTimes: times,
		Fallback:       resp.Fallback,
		Message:        resp.Message,
	}
}
