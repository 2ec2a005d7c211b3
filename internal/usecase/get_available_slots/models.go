package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	modeLive     = "live"
	modeFallback = "fallback"

	fallbackMessage = "calendar is unavailable, times are not verified against the calendar"
)

// Request модель запроса доступного времени
type Request struct {
	Date     time.Time // Дата (используются только год, месяц, день)
	TimeZone string    // IANA-зона клиента (опционально)
}

// Response модель ответа со свободным временем
type Response struct {
	Date           time.Time
	TimeZone       string             // Зона, в которой указаны слоты
	SlotMinutes    int                // Длительность слота
	AvailableTimes []types.TimeString // Свободные слоты по порядку
	Fallback       bool               // true, если календарь недоступен и сверка не выполнялась
	Message        string             // Пояснение для режима fallback
}
