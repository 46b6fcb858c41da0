package server

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPTrigger fires the post-cascade decompose call. It is fire-and-forget:
// failures are logged here and never reach the pipeline that fired it.
type HTTPTrigger struct {
	BaseURL string
	Client  *http.Client
	Log     *zap.Logger
}

func NewHTTPTrigger(baseURL string, log *zap.Logger) *HTTPTrigger {
	return &HTTPTrigger{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Log:     log,
	}
}

func (t *HTTPTrigger) TriggerDecompose(itineraryID string) {
	url := fmt.Sprintf("%s/itineraries/%s/decompose", t.BaseURL, itineraryID)

	resp, err := t.Client.Post(url, "application/json", bytes.NewBufferString("{}"))
	if err != nil {
		t.Log.Warn("decompose trigger failed", zap.String("itinerary", itineraryID), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		t.Log.Warn("decompose trigger rejected",
			zap.String("itinerary", itineraryID),
			zap.Int("status", resp.StatusCode))
		return
	}
	t.Log.Info("decompose triggered", zap.String("itinerary", itineraryID))
}
