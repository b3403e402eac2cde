package statusclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/research-mcp/internal/model"
)

type statuspageAPIResponse struct {
	Status struct {
		Indicator   string `json:"indicator"`
		Description string `json:"description"`
	} `json:"status"`
	Components []struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	} `json:"components"`
	Incidents []struct {
		Name string `json:"name"`
	} `json:"incidents"`
}

var statuspageIndicatorMap = map[string]model.ServiceHealth{
	"none":        model.HealthOperational,
	"minor":       model.HealthDegradedPerf,
	"major":       model.HealthPartialOutage,
	"critical":    model.HealthMajorOutage,
	"maintenance": model.HealthUnderMaintenance,
}

var statuspageComponentStatusMap = map[string]model.ServiceHealth{
	"operational":          model.HealthOperational,
	"degraded_performance": model.HealthDegradedPerf,
	"partial_outage":       model.HealthPartialOutage,
	"major_outage":         model.HealthMajorOutage,
	"under_maintenance":    model.HealthUnderMaintenance,
}

// fetchStatuspageAPI probes the two conventional Statuspage.io JSON
// endpoints under statusURL and returns the first that responds 200.
func fetchStatuspageAPI(ctx context.Context, client *http.Client, ua, statusURL string) (*statuspageAPIResponse, bool) {
	base := strings.TrimSuffix(statusURL, "/")
	candidates := []string{base + "/api/v2/status.json", base + "/api/v2/summary.json"}

	for _, candidate := range candidates {
		reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, candidate, nil)
		if err != nil {
			cancel()
			continue
		}
		req.Header.Set("User-Agent", ua)
		resp, err := client.Do(req)
		if err != nil {
			cancel()
			continue
		}
		if resp.StatusCode == http.StatusOK {
			var payload statuspageAPIResponse
			decodeErr := json.NewDecoder(resp.Body).Decode(&payload)
			resp.Body.Close()
			cancel()
			if decodeErr == nil {
				return &payload, true
			}
			continue
		}
		resp.Body.Close()
		cancel()
	}
	return nil, false
}

func parseStatuspageAPIResponse(data *statuspageAPIResponse) model.ServiceStatus {
	status := model.ServiceStatus{Status: model.HealthUnknown, CurrentIncidents: []model.ServiceIncident{}}

	if health, ok := statuspageIndicatorMap[data.Status.Indicator]; ok {
		status.Status = health
	}
	if data.Status.Description != "" {
		status.CurrentIncidents = append(status.CurrentIncidents, model.ServiceIncident{
			Title: data.Status.Description,
		})
	}

	for i, comp := range data.Components {
		if i >= 10 {
			break
		}
		health, ok := statuspageComponentStatusMap[comp.Status]
		if !ok {
			health = model.HealthUnknown
		}
		status.Components = append(status.Components, model.ServiceComponent{
			Name:   comp.Name,
			Status: health,
		})
	}

	for i, inc := range data.Incidents {
		if i >= 3 {
			break
		}
		if inc.Name != "" {
			status.CurrentIncidents = append(status.CurrentIncidents, model.ServiceIncident{Title: inc.Name})
		}
	}

	return status
}
