package create_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/validation"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeUseCase struct {
	calls int
	req   *createBooking.Request
	resp  *createBooking.Response
	err   error
}

func (f *fakeUseCase) Execute(_ context.Context, req *createBooking.Request) (*createBooking.Response, error) {
	f.calls++
	f.req = req
	return f.resp, f.err
}

const validBody = `{
	"name": "Ana García",
	"email": "ana@example.com",
	"date": "2025-11-03",
	"time": "09:00",
	"sessionType": "online",
	"timeZone": "Europe/Madrid",
	"metadata": {"serviceId": "therapy-60"}
}`

func serve(t *testing.T, uc *fakeUseCase, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	h := NewHandler(uc, validation.MustNew(), logger.NewNop())
	w := httptest.NewRecorder()
	h.Handle(w, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func TestHandle_Created(t *testing.T) {
	id := uuid.New()
	uc := &fakeUseCase{resp: &createBooking.Response{Booking: &domain.Booking{
		ID:            id,
		CustomerName:  "Ana García",
		CustomerEmail: "ana@example.com",
		SessionType:   domain.SessionOnline,
		StartTime:     time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC),
		EndTime:       time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC),
		TimeZone:      "Europe/Madrid",
		Status:        domain.StatusConfirmed,
	}}}

	w, body := serve(t, uc, validBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	booking := body["booking"].(map[string]interface{})
	assert.Equal(t, id.String(), booking["id"])
	assert.Equal(t, "2025-11-03T08:00:00Z", booking["startTime"])
	assert.Equal(t, "09:00", booking["time"])
	assert.Equal(t, "Europe/Madrid", booking["timeZone"])

	require.NotNil(t, uc.req)
	assert.Equal(t, "09:00", uc.req.Time.String())
	assert.Equal(t, domain.SessionOnline, uc.req.SessionType)
	assert.Equal(t, map[string]string{"serviceId": "therapy-60"}, uc.req.Metadata)
}

func TestHandle_AlreadyBooked(t *testing.T) {
	uc := &fakeUseCase{err: createBooking.ErrSlotAlreadyBooked}

	w, body := serve(t, uc, validBody)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "already booked", body["error"])
	assert.Equal(t, float64(http.StatusConflict), body["status"])
}

func TestHandle_MissingEmailNeverReachesUseCase(t *testing.T) {
	uc := &fakeUseCase{}
	payload := strings.Replace(validBody, `"email": "ana@example.com",`, "", 1)

	w, body := serve(t, uc, payload)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Zero(t, uc.calls)

	details := body["details"].([]interface{})
	require.Len(t, details, 1)
	assert.Equal(t, "email", details[0].(map[string]interface{})["field"])
}

func TestHandle_RejectsLooseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown field", body: strings.Replace(validBody, `"name"`, `"admin": true, "name"`, 1)},
		{name: "numeric metadata", body: strings.Replace(validBody, `"therapy-60"`, `60`, 1)},
		{name: "bad session type", body: strings.Replace(validBody, `"online"`, `"phone"`, 1)},
		{name: "bad time", body: strings.Replace(validBody, `"09:00"`, `"9am"`, 1)},
		{name: "bad zone", body: strings.Replace(validBody, `"Europe/Madrid"`, `"Mars/Base"`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			w, _ := serve(t, uc, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, uc.calls)
		})
	}
}

func TestHandle_BusinessRuleErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{err: createBooking.ErrNonWorkingDay, code: http.StatusBadRequest},
		{err: createBooking.ErrInvalidTimeSlot, code: http.StatusBadRequest},
		{err: createBooking.ErrSlotInPast, code: http.StatusBadRequest},
		{err: createBooking.ErrTooLateToBook, code: http.StatusBadRequest},
		{err: createBooking.ErrDateTooFarInFuture, code: http.StatusBadRequest},
		{err: createBooking.ErrInternal, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w, body := serve(t, &fakeUseCase{err: tt.err}, validBody)
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, float64(tt.code), body["status"])
		})
	}
}
