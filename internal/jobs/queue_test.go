package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ghl-timezone-sync/internal/address"
	"ghl-timezone-sync/internal/database"
	"ghl-timezone-sync/internal/ghl"
	"ghl-timezone-sync/internal/models"
	"ghl-timezone-sync/internal/tzsync"
	pkgmodels "ghl-timezone-sync/pkg/models"
)

type stubSyncer struct {
	mu      sync.Mutex
	calls   []string
	running int32
	peak    int32
	delay   time.Duration
	result  func(contactID string) (*tzsync.Result, error)
}

func (s *stubSyncer) Sync(_ context.Context, contactID string, _ address.Parts) (*tzsync.Result, error) {
	n := atomic.AddInt32(&s.running, 1)
	for {
		peak := atomic.LoadInt32(&s.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&s.peak, peak, n) {
			break
		}
	}
	time.Sleep(s.delay)
	atomic.AddInt32(&s.running, -1)

	s.mu.Lock()
	s.calls = append(s.calls, contactID)
	s.mu.Unlock()
	return s.result(contactID)
}

type recordingNotifier struct {
	mu   sync.Mutex
	runs []models.JobRun
}

func (n *recordingNotifier) NotifyJob(run models.JobRun) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.runs = append(n.runs, run)
}

func newStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.InitGorm(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("InitGorm: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewGormStore(db)
}

func TestQueueRecordsOutcomes(t *testing.T) {
	syncer := &stubSyncer{result: func(contactID string) (*tzsync.Result, error) {
		switch contactID {
		case "ok":
			return &tzsync.Result{
				Outcome:   tzsync.OutcomeResolved,
				Source:    tzsync.SourceGoogle,
				Candidate: "94105, USA",
				TimeZone:  pkgmodels.ResolvedTimeZone{ID: "America/Los_Angeles", Name: "Pacific Daylight Time"},
				Strategy:  "put-resource",
				Updated:   true,
			}, nil
		case "lost":
			return &tzsync.Result{Outcome: tzsync.OutcomeUnresolved}, tzsync.ErrUnresolved
		default:
			return &tzsync.Result{Outcome: tzsync.OutcomeFallbackResolved}, fmt.Errorf("update: %w", ghl.ErrAllStrategiesFailed)
		}
	}}
	store := newStore(t)
	notifier := &recordingNotifier{}
	q := NewQueue(syncer, store, notifier, 2, 0)

	ids := map[string]string{}
	for _, contact := range []string{"ok", "lost", "rejected"} {
		id, err := q.Submit(contact, address.Parts{State: "CA"})
		if err != nil {
			t.Fatalf("Submit(%s): %v", contact, err)
		}
		ids[contact] = id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	tests := []struct {
		contact    string
		status     string
		deadLetter bool
	}{
		{"ok", StatusUpdated, false},
		{"lost", StatusUnresolved, true},
		{"rejected", StatusUpdateFailed, true},
	}
	for _, tt := range tests {
		run, err := store.Get(ids[tt.contact])
		if err != nil {
			t.Fatalf("Get(%s): %v", tt.contact, err)
		}
		if run.Status != tt.status || run.DeadLetter != tt.deadLetter || run.FinishedAt == nil {
			t.Errorf("%s: run = %+v", tt.contact, run)
		}
	}

	okRun, _ := store.Get(ids["ok"])
	if okRun.TimeZoneID != "America/Los_Angeles" || okRun.Strategy != "put-resource" {
		t.Errorf("ok run = %+v", okRun)
	}
	if okRun.Address != `{"state":"CA"}` {
		t.Errorf("ok run address = %q", okRun.Address)
	}

	dead, err := store.List(true, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(dead) != 2 {
		t.Errorf("dead letters = %d, want 2", len(dead))
	}
	if len(notifier.runs) != 3 {
		t.Errorf("notifications = %d, want 3", len(notifier.runs))
	}
}

func TestQueueBoundsConcurrency(t *testing.T) {
	syncer := &stubSyncer{
		delay: 20 * time.Millisecond,
		result: func(string) (*tzsync.Result, error) {
			return &tzsync.Result{Outcome: tzsync.OutcomeResolved}, nil
		},
	}
	q := NewQueue(syncer, newStore(t), nil, 2, 0)

	for i := 0; i < 6; i++ {
		if _, err := q.Submit(fmt.Sprintf("c%d", i), address.Parts{}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if len(syncer.calls) != 6 {
		t.Errorf("ran %d jobs, want 6", len(syncer.calls))
	}
	if peak := atomic.LoadInt32(&syncer.peak); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestSubmitAfterShutdown(t *testing.T) {
	q := NewQueue(&stubSyncer{}, newStore(t), nil, 1, 0)
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, err := q.Submit("c1", address.Parts{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit() error = %v, want ErrClosed", err)
	}
}

func TestStoreGetMissing(t *testing.T) {
	if _, err := newStore(t).Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestQueueKeepsOnlyRetainedRuns(t *testing.T) {
	syncer := &stubSyncer{result: func(contactID string) (*tzsync.Result, error) {
		if contactID == "c3" {
			return &tzsync.Result{Outcome: tzsync.OutcomeUnresolved}, tzsync.ErrUnresolved
		}
		return &tzsync.Result{Outcome: tzsync.OutcomeResolved}, nil
	}}
	store := newStore(t)
	q := NewQueue(syncer, store, nil, 3, 5)

	for i := 0; i < 40; i++ {
		if _, err := q.Submit(fmt.Sprintf("c%d", i), address.Parts{State: "TX"}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := q.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if len(syncer.calls) != 40 {
		t.Errorf("ran %d jobs, want 40", len(syncer.calls))
	}
	runs, err := store.List(false, 1000)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 5 {
		t.Errorf("rows retained = %d, want 5", len(runs))
	}
}

func TestStorePruneKeepsNewestFinished(t *testing.T) {
	store := newStore(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		finished := base.Add(time.Duration(i) * time.Minute)
		run := &models.JobRun{ID: fmt.Sprintf("done-%d", i), Status: StatusUpdated, FinishedAt: &finished}
		if err := store.Create(run); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if err := store.Create(&models.JobRun{ID: "in-flight", Status: StatusRunning}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	pruned, err := store.Prune(2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Errorf("pruned = %d, want 2", pruned)
	}

	for _, id := range []string{"done-2", "done-3", "in-flight"} {
		if _, err := store.Get(id); err != nil {
			t.Errorf("Get(%s) error = %v, want kept", id, err)
		}
	}
	for _, id := range []string{"done-0", "done-1"} {
		if _, err := store.Get(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%s) error = %v, want ErrNotFound", id, err)
		}
	}
}
