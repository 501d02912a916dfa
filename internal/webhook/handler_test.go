package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ghl-timezone-sync/internal/address"
	"ghl-timezone-sync/internal/jobs"

	"github.com/gin-gonic/gin"
)

type submission struct {
	contactID string
	parts     address.Parts
}

type fakeQueue struct {
	submitted []submission
	err       error
}

func (f *fakeQueue) Submit(contactID string, parts address.Parts) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.submitted = append(f.submitted, submission{contactID, parts})
	return "job-1", nil
}

func post(t *testing.T, q *fakeQueue, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/ghl/webhook", NewHandler(q).HandleContact)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ghl/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return w, resp
}

func TestHandleContactQueues(t *testing.T) {
	q := &fakeQueue{}
	w, resp := post(t, q, `{"contact_id": "c1", "postal_code": "94105"}`)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if resp["ok"] != true || resp["queued"] != true || resp["job_id"] != "job-1" {
		t.Errorf("response = %v", resp)
	}
	if len(q.submitted) != 1 || q.submitted[0].contactID != "c1" || q.submitted[0].parts.PostalCode != "94105" {
		t.Errorf("submitted = %+v", q.submitted)
	}
}

func TestHandleContactNested(t *testing.T) {
	q := &fakeQueue{}
	_, resp := post(t, q, `{"contact": {"id": "c2", "state": "az"}}`)

	if resp["ok"] != true {
		t.Errorf("response = %v", resp)
	}
	if len(q.submitted) != 1 || q.submitted[0].parts.State != "az" {
		t.Errorf("submitted = %+v", q.submitted)
	}
}

func TestHandleContactRejects(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty object", `{}`, "missing contact_id or address parts"},
		{"no address", `{"contact_id": "c1"}`, "missing contact_id or address parts"},
		{"no contact", `{"city": "Tempe", "state": "AZ"}`, "missing contact_id or address parts"},
		{"malformed", `{"contact_id":`, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &fakeQueue{}
			w, resp := post(t, q, tt.body)

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			if resp["ok"] != false || resp["error"] != tt.wantErr {
				t.Errorf("response = %v", resp)
			}
			if _, ok := resp["queued"]; ok {
				t.Errorf("rejection carries queued: %v", resp)
			}
			if len(q.submitted) != 0 {
				t.Errorf("work scheduled for rejected payload: %+v", q.submitted)
			}
		})
	}
}

func TestHandleContactQueueClosed(t *testing.T) {
	w, resp := post(t, &fakeQueue{err: jobs.ErrClosed}, `{"id": "c1", "zip": "10001"}`)
	if w.Code != http.StatusServiceUnavailable || resp["ok"] != false {
		t.Errorf("status = %d, response = %v", w.Code, resp)
	}
}
