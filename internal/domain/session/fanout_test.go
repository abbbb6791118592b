package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pawsit/pawsit-api/internal/domain/session"
)

func TestFanOutFullSuccess(t *testing.T) {
	targets := []session.Target{
		{RecordID: 1, PetID: 10},
		{RecordID: 2, PetID: 11},
		{RecordID: 3, PetID: 12},
	}

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		return nil
	})

	if result.SuccessCount != 3 || result.TotalCount != 3 {
		t.Fatalf("expected 3/3, got %d/%d", result.SuccessCount, result.TotalCount)
	}
	if result.Outcome() != session.FullSuccess {
		t.Errorf("expected full_success, got %s", result.Outcome())
	}
}

func TestFanOutPartialFailureIsReportedNotRepaired(t *testing.T) {
	targets := []session.Target{
		{RecordID: 1, PetID: 10},
		{RecordID: 2, PetID: 11},
		{RecordID: 3, PetID: 12},
	}

	var mu sync.Mutex
	dispatched := make(map[int64]bool)

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		mu.Lock()
		dispatched[tg.RecordID] = true
		mu.Unlock()
		if tg.RecordID == 2 {
			return errors.New("backend rejected the update")
		}
		return nil
	})

	// A sibling failure must not stop the others from being attempted
	if len(dispatched) != 3 {
		t.Errorf("expected all 3 targets dispatched, got %d", len(dispatched))
	}

	if result.SuccessCount != 2 || result.FailureCount() != 1 {
		t.Fatalf("expected 2 successes and 1 failure, got %d and %d", result.SuccessCount, result.FailureCount())
	}
	if result.Outcome() != session.PartialSuccess {
		t.Errorf("expected partial_success, got %s", result.Outcome())
	}
	if result.SuccessCount+result.FailureCount() != result.TotalCount {
		t.Error("success and failure counts must add up to the total")
	}

	failed := result.FailedPetIDs()
	if len(failed) != 1 || failed[0] != 11 {
		t.Errorf("expected failed pet ids [11], got %v", failed)
	}
}

func TestFanOutFullFailure(t *testing.T) {
	targets := []session.Target{
		{RecordID: 1, PetID: 10},
		{RecordID: 2, PetID: 11},
	}

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		return errors.New("backend down")
	})

	if result.SuccessCount != 0 {
		t.Fatalf("expected 0 successes, got %d", result.SuccessCount)
	}
	if result.Outcome() != session.FullFailure {
		t.Errorf("expected full_failure, got %s", result.Outcome())
	}
}

func TestFanOutEmptyBatchIsFullFailure(t *testing.T) {
	result := session.FanOut(context.Background(), nil, func(ctx context.Context, tg session.Target) error {
		t.Error("op must not be called for an empty batch")
		return nil
	})

	if result.TotalCount != 0 {
		t.Fatalf("expected total 0, got %d", result.TotalCount)
	}
	if result.Outcome() != session.FullFailure {
		t.Errorf("empty batch must not report success, got %s", result.Outcome())
	}
}

func TestFanOutSkipsTargetsWithoutID(t *testing.T) {
	targets := []session.Target{
		{RecordID: 1, PetID: 10},
		{RecordID: -1, PetID: 11},
	}

	var mu sync.Mutex
	var dispatched []int64

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		mu.Lock()
		dispatched = append(dispatched, tg.RecordID)
		mu.Unlock()
		return nil
	})

	if len(dispatched) != 1 || dispatched[0] != 1 {
		t.Errorf("expected only record 1 dispatched, got %v", dispatched)
	}

	if result.SuccessCount != 1 || result.TotalCount != 2 {
		t.Fatalf("expected 1/2, got %d/%d", result.SuccessCount, result.TotalCount)
	}
	if result.Records[1].OK {
		t.Error("target without an id must settle as a failure")
	}
	if result.Records[1].Reason == "" {
		t.Error("skipped target must carry a reason")
	}
}

func TestFanOutNoopTargetsSettleAsSuccessWithoutDispatch(t *testing.T) {
	targets := []session.Target{
		{RecordID: 1, PetID: 10, Noop: true},
		{RecordID: 2, PetID: 11},
	}

	var mu sync.Mutex
	var dispatched []int64

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		mu.Lock()
		dispatched = append(dispatched, tg.RecordID)
		mu.Unlock()
		return nil
	})

	if len(dispatched) != 1 || dispatched[0] != 2 {
		t.Errorf("expected only record 2 dispatched, got %v", dispatched)
	}
	if !result.Records[0].OK {
		t.Error("no-op target must settle as success")
	}
	if result.SuccessCount != 2 {
		t.Errorf("expected 2 successes, got %d", result.SuccessCount)
	}
}

func TestFanOutCreateTargetsHaveNoRecordID(t *testing.T) {
	targets := []session.Target{
		{PetID: 10},
		{PetID: 11},
	}

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		return nil
	})

	if result.SuccessCount != 2 {
		t.Fatalf("creation targets must dispatch without a record id, got %d/%d", result.SuccessCount, result.TotalCount)
	}
}

func TestFanOutResultsComeBackInTargetOrder(t *testing.T) {
	targets := make([]session.Target, 20)
	for i := range targets {
		targets[i] = session.Target{RecordID: int64(i + 1), PetID: int64(100 + i)}
	}

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		return nil
	})

	for i, rec := range result.Records {
		if rec.RecordID != int64(i+1) {
			t.Fatalf("result %d carries record id %d; results must follow target order", i, rec.RecordID)
		}
	}
}

func TestFanOutFailureReasonCarriesError(t *testing.T) {
	targets := []session.Target{{RecordID: 1, PetID: 10}}

	result := session.FanOut(context.Background(), targets, func(ctx context.Context, tg session.Target) error {
		return errors.New("409 conflict from backend")
	})

	if result.Records[0].Reason != "409 conflict from backend" {
		t.Errorf("expected the error message as reason, got %q", result.Records[0].Reason)
	}
}
