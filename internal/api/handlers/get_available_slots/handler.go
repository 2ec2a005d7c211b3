package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_available_slots"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidDate        = "invalid date, expected YYYY-MM-DD"
)

type Handler struct {
	useCase   GetAvailableSlotsUseCase
	validator RequestValidator
	logger    Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, validator RequestValidator, logger Logger) *Handler {
	return &Handler{
		useCase:   useCase,
		validator: validator,
		logger:    logger,
	}
}

// Handle POST /api/v1/availability
// Недоступность календаря не является ошибкой: ответ 200 с fallback=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req AvailabilityRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		h.logger.Warn("POST /availability - Validation failed: %v", err)
		handlers.RespondValidationError(w, err)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest()
	if err != nil {
		h.logger.Warn("POST /availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("POST /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)

		default:
			h.logger.Error("POST /availability - Failed to get available times: date=%s, error=%v", req.Date, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /availability - Available times retrieved: date=%s, count=%d, fallback=%t",
		req.Date, len(result.AvailableTimes), result.Fallback)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
