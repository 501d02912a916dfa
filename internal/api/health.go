package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health never touches upstream APIs.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Prober performs a live authenticated call to the CRM.
type Prober interface {
	Probe(ctx context.Context) (int, []byte, error)
}

type DiagHandler struct {
	CRM Prober
}

func NewDiagHandler(crm Prober) *DiagHandler {
	return &DiagHandler{CRM: crm}
}

// Diag echoes the CRM's answer to an authenticated location read.
func (h *DiagHandler) Diag(c *gin.Context) {
	status, body, err := h.CRM.Probe(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     status < http.StatusBadRequest,
		"status": status,
		"body":   string(body),
	})
}
