package handler

import (
	"net/http"

	"github.com/famhub/location-tracking-system/pkg/logger"
	wrap "github.com/famhub/location-tracking-system/pkg/logger/wrapper"
)

type Health struct {
	serviceName string
	activeTier  func() string
	log         logger.Logger
}

func NewHealth(serviceName string, activeTier func() string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		activeTier:  activeTier,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the service
// @Tags         Health
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status": "available",
		"system_info": map[string]string{
			"service-name":      a.serviceName,
			"active-cache-tier": a.activeTier(),
		},
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
		return
	}
}
