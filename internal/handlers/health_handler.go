package handlers

import (
	"fmt"
	"net/http"
)

type HealthHandler struct {
	isReady func() bool
}

func NewHealthHandler(isReady func() bool) *HealthHandler {
	return &HealthHandler{isReady: isReady}
}

// ServeHTTP answers 200 once the Discord session is ready and 503 before
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !h.isReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "NOT READY")
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
