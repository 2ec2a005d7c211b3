package get_schedule_config

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/schedule-config
// Конфигурация всегда разрешается: при недоступности удалённого источника берутся значения окружения
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	config := h.service.GetScheduleConfig(r.Context())

	h.logger.Info("GET /schedule-config - Config resolved: source=%s", config.Source)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(config))
}
