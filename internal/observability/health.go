package observability

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	healthStatusOK          = "ok"
	healthStatusUnavailable = "unavailable"
)

// ReadyCheck returns nil when a subsystem is ready.
type ReadyCheck func(ctx context.Context) error

// HealthHandler always answers 200 {"status":"ok"}.
func HealthHandler() http.Handler {
	return ReadyHandler()
}

// ReadyHandler answers 503 {"status":"unavailable"} when any check fails
// and 200 {"status":"ok"} otherwise.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		code, status := http.StatusOK, healthStatusOK

		for _, check := range checks {
			if check(hr.Context()) != nil {
				code, status = http.StatusServiceUnavailable, healthStatusUnavailable

				break
			}
		}

		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(code)

		//nolint:errchkjson // a map of strings always encodes.
		_ = json.NewEncoder(rw).Encode(map[string]string{"status": status})
	})
}
