package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atlastrail/cascade/internal/core/pipeline"
	"github.com/atlastrail/cascade/internal/store"
)

// Server exposes the two pipelines over HTTP. It is a thin layer: request
// decoding, pipeline invocation, status mapping. Timeouts and cancellation
// belong here, not in the pipelines.
type Server struct {
	Cascade    *pipeline.Cascade
	Decomposer *pipeline.Decomposer
	Store      store.Store
	Log        *zap.Logger
}

func New(cascade *pipeline.Cascade, decomposer *pipeline.Decomposer, s store.Store, log *zap.Logger) *Server {
	return &Server{Cascade: cascade, Decomposer: decomposer, Store: s, Log: log}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/itineraries/:id/cascade", s.RunCascade)
	r.POST("/itineraries/:id/decompose", s.RunDecompose)
	r.GET("/jobs/:id", s.GetJob)
	r.GET("/healthz", s.Health)

	return r
}

type RunPipelineRequest struct {
	DryRun bool   `json:"dry_run"`
	JobID  string `json:"job_id"`
}

func (s *Server) RunCascade(c *gin.Context) {
	var req RunPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.Cascade.Run(c.Request.Context(), pipeline.RunRequest{
		ItineraryID: c.Param("id"),
		DryRun:      req.DryRun,
		JobID:       req.JobID,
	})
	if err != nil {
		// The result still carries the step trail up to the failure.
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) RunDecompose(c *gin.Context) {
	var req RunPipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.Decomposer.Run(c.Request.Context(), pipeline.RunRequest{
		ItineraryID: c.Param("id"),
		DryRun:      req.DryRun,
		JobID:       req.JobID,
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetJob(c *gin.Context) {
	doc, err := s.Store.FindByID(c.Request.Context(), store.CollJobs, c.Param("id"))
	if err != nil {
		s.Log.Error("job lookup failed", zap.String("job", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) Health(c *gin.Context) {
	type pinger interface{ Ping(ctx context.Context) error }
	if p, ok := s.Store.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
