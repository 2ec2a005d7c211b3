package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// BookingIDParam извлекает {bookingId} из URL
func BookingIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["bookingId"])
}
