package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// healthTimeout upper bound for all dependency checks together
const healthTimeout = 2 * time.Second

// HealthCheck probes one optional dependency; detail is reported as-is
type HealthCheck func(ctx context.Context) (detail interface{}, err error)

// checkResult one entry of the /health "checks" object
type checkResult struct {
	Healthy bool        `json:"healthy"`
	Error   string      `json:"error,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
}

// healthHandler reports process liveness plus each configured dependency
// 저장소와 캐시는 선택 의존성: 실패해도 분석은 동작하므로 200 + "degraded"
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := "ok"
		results := make(map[string]checkResult, len(names))
		for _, name := range names {
			detail, err := checks[name](ctx)
			res := checkResult{Healthy: err == nil, Detail: detail}
			if err != nil {
				res.Error = err.Error()
				status = "degraded"
			}
			results[name] = res
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  status,
			"service": "riskscope-api",
			"checks":  results,
		})
	}
}
