package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dnsmonitor/internal/adapters/db/memory"
	appsnapshot "dnsmonitor/internal/application/snapshot"
	"dnsmonitor/internal/domain/dnsrecord"
	"dnsmonitor/internal/domain/snapshot"
)

// Mock implementations for testing

type mockResolver struct {
	records []dnsrecord.Record
	err     error
	calls   int
}

func (m *mockResolver) Resolve(ctx context.Context, domain string) ([]dnsrecord.Record, error) {
	m.calls++
	return m.records, m.err
}

type mockNotifier struct {
	mu      sync.Mutex
	results []*CheckResult
	err     error
}

func (m *mockNotifier) NotifyChanges(ctx context.Context, result *CheckResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	return m.err
}

type mockLocker struct {
	acquired []string
	released int
}

func (m *mockLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	m.acquired = append(m.acquired, key)
	return func(context.Context) error {
		m.released++
		return nil
	}, nil
}

type failingStore struct {
	SnapshotStore
}

func (f *failingStore) CreateWithRecords(ctx context.Context, records []dnsrecord.Record, summary snapshot.ChangeSummary) (int64, error) {
	return 0, snapshot.ErrInsertFailure
}

func a(ip string) dnsrecord.Record {
	return dnsrecord.A{Hdr: dnsrecord.Header{Host: "example.com", TTL: 300}, IP: ip}
}

func mx(target string, priority uint16) dnsrecord.Record {
	return dnsrecord.MX{Hdr: dnsrecord.Header{Host: "example.com", TTL: 300}, Target: target, Priority: priority}
}

func newTestService(behavior SnapshotBehavior, records ...dnsrecord.Record) (*Service, *mockResolver, *appsnapshot.Store) {
	resolver := &mockResolver{records: records}
	store := appsnapshot.NewStore(memory.NewSnapshotRepository(), 10)
	return NewService(Config{Domain: "example.com", Behavior: behavior}, resolver, store), resolver, store
}

func TestCheck_FirstSnapshotIsBaseline(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestService(BehaviorOnChange, a("1.1.1.1"), mx("mail.example.com", 10))
	notifier := &mockNotifier{}
	svc.AddNotifier(notifier)

	result, err := svc.Check(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Baseline || !result.Saved || result.SnapshotID == 0 {
		t.Errorf("Expected a saved baseline snapshot, got %+v", result)
	}
	if result.ChangesDetected || result.Summary != (snapshot.ChangeSummary{}) {
		t.Errorf("Expected no changes on baseline, got %+v", result.Summary)
	}
	if len(notifier.results) != 0 {
		t.Errorf("Expected no notification on baseline, got %d", len(notifier.results))
	}
	if result.ID == "" || result.RecordCount != 2 {
		t.Errorf("Expected check id and record count 2, got %q and %d", result.ID, result.RecordCount)
	}

	set, _ := store.RecordsOf(ctx, result.SnapshotID)
	if len(set.Records) != 2 {
		t.Errorf("Expected 2 stored records, got %d", len(set.Records))
	}
}

func TestCheck_DetectsModification(t *testing.T) {
	ctx := context.Background()
	svc, resolver, _ := newTestService(BehaviorOnChange, a("1.1.1.1"))
	notifier := &mockNotifier{}
	svc.AddNotifier(notifier)

	first, err := svc.Check(ctx)
	if err != nil {
		t.Fatalf("Baseline check failed: %v", err)
	}

	resolver.records = []dnsrecord.Record{a("2.2.2.2")}
	result, err := svc.Check(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := snapshot.ChangeSummary{Modifications: 1, Total: 1}
	if result.Summary != want {
		t.Errorf("Expected %+v, got %+v", want, result.Summary)
	}
	if !result.ChangesDetected || !result.Saved {
		t.Errorf("Expected saved changes, got %+v", result)
	}
	if result.PreviousSnapshotID != first.SnapshotID {
		t.Errorf("Expected comparison against %d, got %d", first.SnapshotID, result.PreviousSnapshotID)
	}
	if result.Changes == nil || len(result.Changes.Modified) != 1 {
		t.Fatalf("Expected change detail with one modification, got %+v", result.Changes)
	}
	if result.Changes.Modified[0].Previous["ip"] != "1.1.1.1" || result.Changes.Modified[0].Current["ip"] != "2.2.2.2" {
		t.Errorf("Unexpected modification detail: %+v", result.Changes.Modified[0])
	}
	if len(notifier.results) != 1 || notifier.results[0] != result {
		t.Errorf("Expected one notification for the result, got %d", len(notifier.results))
	}
}

func TestCheck_TTLChangeIsNotAChange(t *testing.T) {
	ctx := context.Background()
	svc, resolver, _ := newTestService(BehaviorOnChange, a("1.1.1.1"))
	if _, err := svc.Check(ctx); err != nil {
		t.Fatalf("Baseline check failed: %v", err)
	}

	resolver.records = []dnsrecord.Record{dnsrecord.WithTTL(a("1.1.1.1"), 600)}
	result, err := svc.Check(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.ChangesDetected || result.Saved {
		t.Errorf("Expected no changes and no snapshot, got %+v", result)
	}
}

func TestCheck_SnapshotBehavior(t *testing.T) {
	tests := []struct {
		behavior  SnapshotBehavior
		wantSaved bool
		wantCount int
	}{
		{BehaviorAlways, true, 2},
		{BehaviorOnChange, false, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.behavior), func(t *testing.T) {
			ctx := context.Background()
			svc, _, store := newTestService(tt.behavior, a("1.1.1.1"))

			if _, err := svc.Check(ctx); err != nil {
				t.Fatalf("Baseline check failed: %v", err)
			}
			result, err := svc.Check(ctx)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if result.Saved != tt.wantSaved {
				t.Errorf("Expected saved=%v, got %v", tt.wantSaved, result.Saved)
			}
			if count, _ := store.Count(ctx); count != tt.wantCount {
				t.Errorf("Expected %d snapshots, got %d", tt.wantCount, count)
			}
		})
	}
}

func TestCheck_ResolutionErrors(t *testing.T) {
	ctx := context.Background()

	svc, resolver, store := newTestService(BehaviorAlways)
	if _, err := svc.Check(ctx); !errors.Is(err, ErrResolutionEmpty) {
		t.Errorf("Expected ErrResolutionEmpty, got %v", err)
	}

	resolver.err = errors.New("timeout")
	if _, err := svc.Check(ctx); !errors.Is(err, ErrResolutionFailed) {
		t.Errorf("Expected ErrResolutionFailed, got %v", err)
	}

	resolver.err = nil
	resolver.records = []dnsrecord.Record{a("1.1.1.1"), dnsrecord.WithTTL(a("1.1.1.1"), 5)}
	if _, err := svc.Check(ctx); !errors.Is(err, dnsrecord.ErrDuplicateRecord) {
		t.Errorf("Expected ErrDuplicateRecord, got %v", err)
	}

	if count, _ := store.Count(ctx); count != 0 {
		t.Errorf("Expected no snapshot after failed checks, got %d", count)
	}
}

func TestCheck_SaveFailureStillReportsChanges(t *testing.T) {
	ctx := context.Background()
	svc, resolver, store := newTestService(BehaviorAlways, a("1.1.1.1"))
	notifier := &mockNotifier{}
	svc.AddNotifier(notifier)

	if _, err := svc.Check(ctx); err != nil {
		t.Fatalf("Baseline check failed: %v", err)
	}

	svc.store = &failingStore{SnapshotStore: store}
	resolver.records = []dnsrecord.Record{a("1.1.1.1"), a("2.2.2.2")}

	result, err := svc.Check(ctx)
	if !errors.Is(err, ErrSnapshotNotSaved) || !errors.Is(err, snapshot.ErrInsertFailure) {
		t.Fatalf("Expected ErrSnapshotNotSaved wrapping ErrInsertFailure, got %v", err)
	}
	if result == nil {
		t.Fatal("Expected the result to be returned with the error")
	}
	if result.Saved || result.Summary.Additions != 1 {
		t.Errorf("Expected unsaved result with one addition, got %+v", result)
	}
	if len(notifier.results) != 1 || notifier.results[0].Saved {
		t.Errorf("Expected one notification for the unsaved result, got %+v", notifier.results)
	}
}

func TestCheck_NotifierErrorIsNotFatal(t *testing.T) {
	ctx := context.Background()
	svc, resolver, _ := newTestService(BehaviorAlways, a("1.1.1.1"))
	svc.AddNotifier(&mockNotifier{err: errors.New("smtp down")})
	second := &mockNotifier{}
	svc.AddNotifier(second)

	if _, err := svc.Check(ctx); err != nil {
		t.Fatalf("Baseline check failed: %v", err)
	}
	resolver.records = []dnsrecord.Record{a("9.9.9.9")}
	if _, err := svc.Check(ctx); err != nil {
		t.Fatalf("Expected notifier error to be swallowed, got %v", err)
	}
	if len(second.results) != 1 {
		t.Errorf("Expected later notifiers to still run, got %d calls", len(second.results))
	}
}

func TestCheck_TakesLock(t *testing.T) {
	svc, _, _ := newTestService(BehaviorAlways, a("1.1.1.1"))
	locker := &mockLocker{}
	svc.SetLocker(locker)

	if _, err := svc.Check(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(locker.acquired) != 1 || locker.acquired[0] != "check:example.com" || locker.released != 1 {
		t.Errorf("Expected lock to be taken and released once, got %v / %d", locker.acquired, locker.released)
	}
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	svc, resolver, _ := newTestService(BehaviorAlways, a("1.1.1.1"), mx("mail.example.com", 10))

	first, _ := svc.Check(ctx)
	resolver.records = []dnsrecord.Record{a("1.1.1.1"), mx("mail.example.com", 20)}
	second, _ := svc.Check(ctx)

	cmp, err := svc.Compare(ctx, second.SnapshotID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cmp.Previous == nil || cmp.Previous.ID != first.SnapshotID {
		t.Fatalf("Expected predecessor %d, got %+v", first.SnapshotID, cmp.Previous)
	}
	if len(cmp.CurrentRecords.Records) != 2 || len(cmp.PreviousRecords.Records) != 2 {
		t.Errorf("Expected both record sets, got %d and %d", len(cmp.CurrentRecords.Records), len(cmp.PreviousRecords.Records))
	}
	if got := cmp.Changes.Summary(); got.Modifications != 1 || got.Total != 1 {
		t.Errorf("Expected one modification, got %+v", got)
	}

	oldest, err := svc.Compare(ctx, first.SnapshotID)
	if err != nil {
		t.Fatalf("Expected no error for oldest snapshot, got %v", err)
	}
	if oldest.Previous != nil || len(oldest.PreviousRecords.Records) != 0 {
		t.Errorf("Expected no predecessor for the oldest snapshot, got %+v", oldest.Previous)
	}

	if _, err := svc.Compare(ctx, 999); !errors.Is(err, snapshot.ErrSnapshotNotFound) {
		t.Errorf("Expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestParseSnapshotBehavior(t *testing.T) {
	tests := []struct {
		in      string
		want    SnapshotBehavior
		wantErr bool
	}{
		{"", BehaviorAlways, false},
		{"always", BehaviorAlways, false},
		{"ON_CHANGE", BehaviorOnChange, false},
		{" on_change ", BehaviorOnChange, false},
		{"sometimes", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSnapshotBehavior(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: expected error=%v, got %v", tt.in, tt.wantErr, err)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidBehavior) {
			t.Errorf("%q: expected ErrInvalidBehavior, got %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%q: expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
