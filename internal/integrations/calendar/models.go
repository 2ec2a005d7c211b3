package calendar

import "time"

// freeBusyRequest тело запроса POST /freeBusy
type freeBusyRequest struct {
	TimeMin  time.Time        `json:"timeMin"`
	TimeMax  time.Time        `json:"timeMax"`
	TimeZone string           `json:"timeZone,omitempty"`
	Items    []freeBusyItemID `json:"items"`
}

type freeBusyItemID struct {
	ID string `json:"id"`
}

// freeBusyResponse ответ календаря
type freeBusyResponse struct {
	Calendars map[string]calendarBusy `json:"calendars"`
}

type calendarBusy struct {
	Busy   []busyPeriod    `json:"busy"`
	Errors []calendarError `json:"errors,omitempty"`
}

type busyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type calendarError struct {
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}
