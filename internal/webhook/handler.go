package webhook

import (
	"log"
	"net/http"

	"ghl-timezone-sync/internal/address"
	"ghl-timezone-sync/pkg/models"

	"github.com/gin-gonic/gin"
)

const errMissingFields = "missing contact_id or address parts"

// Submitter queues a background sync and returns its job id.
type Submitter interface {
	Submit(contactID string, parts address.Parts) (string, error)
}

type Handler struct {
	Jobs Submitter
}

func NewHandler(jobs Submitter) *Handler {
	return &Handler{Jobs: jobs}
}

// HandleContact acknowledges the webhook right away and leaves the lookup
// and CRM write to the job queue. Rejections are reported in the body with
// a 200 so the CRM workflow does not retry them.
func (h *Handler) HandleContact(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Printf("Error binding webhook JSON: %v", err)
		c.JSON(http.StatusOK, models.WebhookResponse{OK: false, Error: "invalid JSON body"})
		return
	}

	contactID := address.ContactID(payload)
	parts := address.Extract(payload)
	if contactID == "" || parts.Empty() {
		log.Printf("Rejected webhook: contact_id=%q parts=%+v", contactID, parts)
		c.JSON(http.StatusOK, models.WebhookResponse{OK: false, Error: errMissingFields})
		return
	}

	jobID, err := h.Jobs.Submit(contactID, parts)
	if err != nil {
		log.Printf("Error queueing contact %s: %v", contactID, err)
		c.JSON(http.StatusServiceUnavailable, models.WebhookResponse{OK: false, Error: "not accepting jobs"})
		return
	}

	log.Printf("Queued job %s for contact %s", jobID, contactID)
	c.JSON(http.StatusOK, models.WebhookResponse{OK: true, Queued: true, JobID: jobID})
}
