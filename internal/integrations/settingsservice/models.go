package settingsservice

// WorkingHours рабочие часы из удалённого источника настроек
// Ranges (если задан) содержит несколько диапазонов: "09:00-12:00;14:00-18:00"
type WorkingHours struct {
	Start  string   `json:"start"`
	End    string   `json:"end"`
	Days   []string `json:"days"`
	Ranges string   `json:"ranges,omitempty"`
}

// BookingSettings настройки бронирования из удалённого источника
type BookingSettings struct {
	SlotMinutes       int `json:"slotMinutes"`
	MinAdvanceHours   int `json:"minAdvanceHours"`
	MaxAdvanceDays    int `json:"maxAdvanceDays"`
	CancellationHours int `json:"cancellationHours"`
}

// ErrorResponse модель ошибки от сервиса настроек
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
