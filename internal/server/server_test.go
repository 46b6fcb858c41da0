package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/filter"
	"github.com/atlastrail/cascade/internal/core/ideate"
	"github.com/atlastrail/cascade/internal/core/pipeline"
	"github.com/atlastrail/cascade/internal/core/project"
	"github.com/atlastrail/cascade/internal/core/relate"
	"github.com/atlastrail/cascade/internal/core/resolve"
	"github.com/atlastrail/cascade/internal/store"
	"github.com/atlastrail/cascade/internal/store/storetest"
)

func newTestServer(mem *storetest.Memory) *Server {
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	cascade := &pipeline.Cascade{
		Store:         mem,
		Destinations:  resolve.NewDestinationResolver(mem, log),
		Properties:    resolve.NewPropertyResolver(mem, log),
		Relationships: relate.NewManager(&relate.MockDriver{ExistingEdges: map[string]bool{}}, log),
		Projects:      project.NewGenerator(mem, log),
		Progress:      pipeline.NewReporter(mem, log),
		Log:           log,
	}
	decomposer := &pipeline.Decomposer{
		Store:    mem,
		Ideator:  ideate.NewGenerator(&ideate.MockLLMClient{Response: `{"candidates": []}`}, "", 8, log),
		Filter:   filter.NewEngine(mem, &filter.MockSearcher{}, 0.85, 5, log),
		Shaper:   project.NewShaper(mem, log),
		Progress: pipeline.NewReporter(mem, log),
		Log:      log,
	}
	return New(cascade, decomposer, mem, log)
}

func seedItinerary(mem *storetest.Memory) {
	mem.Seed(store.CollItineraries, store.Document{
		"id":   "itin-1",
		"name": "Kenya Classic Safari",
		"overview": map[string]interface{}{
			"countries": []interface{}{map[string]interface{}{"country": "Kenya"}},
		},
		"days": []interface{}{},
	})
}

func TestRunCascadeDryRun(t *testing.T) {
	mem := storetest.NewMemory()
	seedItinerary(mem)
	r := newTestServer(mem).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/itineraries/itin-1/cascade", strings.NewReader(`{"dry_run": true}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dry_run":true`)
	assert.Equal(t, 0, mem.WriteCount())
}

func TestRunCascadeEmptyBodyAllowed(t *testing.T) {
	mem := storetest.NewMemory()
	seedItinerary(mem)
	r := newTestServer(mem).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/itineraries/itin-1/cascade", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunCascadeUnknownItinerary(t *testing.T) {
	mem := storetest.NewMemory()
	r := newTestServer(mem).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/itineraries/ghost/cascade", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestRunDecompose(t *testing.T) {
	mem := storetest.NewMemory()
	seedItinerary(mem)
	r := newTestServer(mem).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/itineraries/itin-1/decompose", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_candidates":0`)
}

func TestGetJob(t *testing.T) {
	mem := storetest.NewMemory()
	mem.Seed(store.CollJobs, store.Document{"id": "job-1", "status": "completed"})
	r := newTestServer(mem).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "completed")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/jobs/missing", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	mem := storetest.NewMemory()
	r := newTestServer(mem).SetupRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
