package update_booking_status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	id  uuid.UUID
	req *models.UpdateStatusRequest
	err error
}

func (f *fakeService) UpdateStatus(_ context.Context, id uuid.UUID, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	f.id = id
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BookingResponse{ID: id.String(), Status: req.Status}, nil
}

func serve(svc *fakeService, bookingID, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc, logger.NewNop())
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{"bookingId": bookingID})
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{}
	id := uuid.New()

	w := serve(svc, id.String(), `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, svc.id)
	assert.Equal(t, "completed", svc.req.Status)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name string
		id   string
		body string
		err  error
		code int
	}{
		{name: "bad id", id: "42", body: `{"status":"completed"}`, code: http.StatusBadRequest},
		{name: "empty body", id: uuid.NewString(), body: ``, code: http.StatusBadRequest},
		{name: "unknown field", id: uuid.NewString(), body: `{"status":"completed","x":1}`, code: http.StatusBadRequest},
		{name: "not found", id: uuid.NewString(), body: `{"status":"completed"}`, err: bookings.ErrBookingNotFound, code: http.StatusNotFound},
		{name: "invalid status", id: uuid.NewString(), body: `{"status":"archived"}`, err: bookings.ErrInvalidStatus, code: http.StatusBadRequest},
		{name: "cancelled", id: uuid.NewString(), body: `{"status":"completed"}`, err: bookings.ErrCannotUpdateStatus, code: http.StatusConflict},
		{name: "internal", id: uuid.NewString(), body: `{"status":"no_show"}`, err: bookings.ErrInternal, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(&fakeService{err: tt.err}, tt.id, tt.body)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}
