package api

import (
	"errors"
	"net/http"
	"strconv"

	"ghl-timezone-sync/internal/jobs"

	"github.com/gin-gonic/gin"
)

const maxJobsLimit = 500

type JobsHandler struct {
	Store jobs.Store
}

func NewJobsHandler(store jobs.Store) *JobsHandler {
	return &JobsHandler{Store: store}
}

// GetJobs lists recent runs. ?dead=1 restricts to dead letters.
func (h *JobsHandler) GetJobs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxJobsLimit)
	}
	deadOnly, _ := strconv.ParseBool(c.DefaultQuery("dead", "false"))

	runs, err := h.Store.List(deadOnly, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, runs)
}

func (h *JobsHandler) GetJob(c *gin.Context) {
	run, err := h.Store.Get(c.Param("id"))
	if errors.Is(err, jobs.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, run)
}
