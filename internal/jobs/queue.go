package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"ghl-timezone-sync/internal/address"
	"ghl-timezone-sync/internal/models"
	"ghl-timezone-sync/internal/tzsync"

	"github.com/google/uuid"
)

const (
	StatusQueued       = "queued"
	StatusRunning      = "running"
	StatusUpdated      = "updated"
	StatusUnresolved   = "unresolved"
	StatusUpdateFailed = "update_failed"
)

// DefaultRetention is the number of finished runs kept when none is given.
const DefaultRetention = 1000

var ErrClosed = errors.New("jobs: queue is shut down")

type Syncer interface {
	Sync(ctx context.Context, contactID string, parts address.Parts) (*tzsync.Result, error)
}

// Notifier is told about every finished run.
type Notifier interface {
	NotifyJob(run models.JobRun)
}

// Queue runs one background sync per accepted webhook. At most concurrency
// syncs run at once; the rest wait their turn. Jobs are never cancelled once
// submitted, and Shutdown waits for them. Only the newest retention finished
// runs stay in the store.
type Queue struct {
	syncer   Syncer
	store    Store
	notifier Notifier
	sem      chan struct{}

	retention int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewQueue builds a queue. notifier may be nil. A retention of zero or less
// means DefaultRetention.
func NewQueue(syncer Syncer, store Store, notifier Notifier, concurrency, retention int) *Queue {
	if concurrency <= 0 {
		concurrency = 1
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Queue{
		syncer:    syncer,
		store:     store,
		notifier:  notifier,
		sem:       make(chan struct{}, concurrency),
		retention: retention,
	}
}

// Submit records a queued run and starts it in the background. It returns
// the run id immediately.
func (q *Queue) Submit(contactID string, parts address.Parts) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return "", ErrClosed
	}

	addressJSON, err := json.Marshal(parts)
	if err != nil {
		log.Printf("Error encoding address for contact %s: %v", contactID, err)
	}
	run := &models.JobRun{
		ID:        uuid.NewString(),
		ContactID: contactID,
		Status:    StatusQueued,
		Address:   string(addressJSON),
	}
	if err := q.store.Create(run); err != nil {
		log.Printf("Error recording job %s: %v", run.ID, err)
	}

	q.wg.Add(1)
	go q.run(run, parts)
	return run.ID, nil
}

func (q *Queue) run(run *models.JobRun, parts address.Parts) {
	defer q.wg.Done()

	q.sem <- struct{}{}
	defer func() { <-q.sem }()

	run.Status = StatusRunning
	if err := q.store.Save(run); err != nil {
		log.Printf("Error updating job %s: %v", run.ID, err)
	}

	result, err := q.syncer.Sync(context.Background(), run.ContactID, parts)
	finish(run, result, err)

	if run.DeadLetter {
		log.Printf("Dead letter: job %s contact %s status %s: %s", run.ID, run.ContactID, run.Status, run.ErrorMessage)
	} else {
		log.Printf("Job %s contact %s set to %s (%s via %s)", run.ID, run.ContactID, run.TimeZoneID, run.Outcome, run.Strategy)
	}

	if err := q.store.Save(run); err != nil {
		log.Printf("Error updating job %s: %v", run.ID, err)
	}
	if _, err := q.store.Prune(q.retention); err != nil {
		log.Printf("Error pruning job history: %v", err)
	}
	if q.notifier != nil {
		q.notifier.NotifyJob(*run)
	}
}

func finish(run *models.JobRun, result *tzsync.Result, err error) {
	now := time.Now()
	run.FinishedAt = &now

	if result != nil {
		run.Outcome = string(result.Outcome)
		run.Source = string(result.Source)
		run.Candidate = result.Candidate
		run.TimeZoneID = result.TimeZone.ID
		run.TimeZoneName = result.TimeZone.Name
		run.Strategy = result.Strategy
		if attempts, mErr := json.Marshal(result.Attempts); mErr == nil {
			run.Attempts = string(attempts)
		}
	}

	switch {
	case err == nil:
		run.Status = StatusUpdated
	case errors.Is(err, tzsync.ErrUnresolved):
		run.Status = StatusUnresolved
	default:
		run.Status = StatusUpdateFailed
	}
	if err != nil {
		run.DeadLetter = true
		run.ErrorMessage = err.Error()
	}
}

// Shutdown stops accepting jobs and waits for in-flight ones, or until ctx
// is done.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
