package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"mockmate/internal/config"
	"mockmate/internal/llm"
	"mockmate/internal/prompts"
	"mockmate/internal/utils"
)

const readinessTimeout = 2 * time.Second

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

// Pinger probes a backing service.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	config        *config.Config
	pingers       map[string]Pinger
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, cfg *config.Config, pingers map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		config:        cfg,
		pingers:       pingers,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "mockmate",
	})
}

func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)

	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{Status: "failed", Message: "AI provider not initialized"}
	} else {
		checks["provider"] = ReadinessCheck{Status: "ok", Message: handler.provider.GetProviderName()}
	}

	switch {
	case handler.promptManager == nil:
		checks["prompt_manager"] = ReadinessCheck{Status: "failed", Message: "Prompt manager not initialized"}
	case len(handler.promptManager.GetTemplates()) == 0:
		checks["prompt_manager"] = ReadinessCheck{Status: "failed", Message: "No prompt templates loaded"}
	default:
		checks["prompt_manager"] = ReadinessCheck{Status: "ok"}
	}

	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{Status: "failed", Message: "Configuration not loaded"}
	} else {
		checks["configuration"] = ReadinessCheck{Status: "ok"}
	}

	names := make([]string, 0, len(handler.pingers))
	for name := range handler.pingers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctx, cancel := context.WithTimeout(request.Context(), readinessTimeout)
		err := handler.pingers[name](ctx)
		cancel()
		if err != nil {
			checks[name] = ReadinessCheck{Status: "failed", Message: err.Error()}
		} else {
			checks[name] = ReadinessCheck{Status: "ok"}
		}
	}

	response := ReadinessResponse{Service: "mockmate", Checks: checks, Status: "ready"}
	status := http.StatusOK
	for _, check := range checks {
		if check.Status != "ok" {
			response.Status = "not_ready"
			status = http.StatusServiceUnavailable
			break
		}
	}
	utils.JSON(writer, status, response)
}
