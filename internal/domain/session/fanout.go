package session

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Outcome classifies an aggregated fan-out result
type Outcome string

const (
	FullSuccess    Outcome = "full_success"
	PartialSuccess Outcome = "partial_success"
	FullFailure    Outcome = "full_failure"
)

// reasonNoIdentifier is attached to sub-operations skipped because the target
// record carries no usable id
const reasonNoIdentifier = "no valid identifier"

// Target identifies one sub-operation of a fan-out. Noop targets are already
// in the requested state; they count as successes without being dispatched.
type Target struct {
	RecordID int64
	PetID    int64
	Noop     bool
}

// RecordResult is the settled outcome of one sub-operation
type RecordResult struct {
	RecordID int64  `json:"record_id"`
	PetID    int64  `json:"pet_id"`
	OK       bool   `json:"ok"`
	Reason   string `json:"reason,omitempty"`
}

// Result aggregates a fan-out. It is only meaningful once every
// sub-operation has settled; FanOut returns it no earlier.
type Result struct {
	SuccessCount int
	TotalCount   int
	Records      []RecordResult
}

// FailureCount returns the number of failed sub-operations
func (r Result) FailureCount() int {
	return r.TotalCount - r.SuccessCount
}

// Outcome classifies the result. Partial success means the session's records
// now hold divergent states; callers must surface it distinctly from full
// failure. An empty batch classifies as full failure: zero sub-operations
// means nothing was accomplished, and callers reject empty target lists
// before dispatch anyway.
func (r Result) Outcome() Outcome {
	switch {
	case r.TotalCount > 0 && r.SuccessCount == r.TotalCount:
		return FullSuccess
	case r.SuccessCount > 0:
		return PartialSuccess
	default:
		return FullFailure
	}
}

// FailedPetIDs returns the pet ids of failed sub-operations, in target order
func (r Result) FailedPetIDs() []int64 {
	var ids []int64
	for _, record := range r.Records {
		if !record.OK {
			ids = append(ids, record.PetID)
		}
	}
	return ids
}

// NewGroupID returns a timestamp-derived correlation id shared by all records
// created in one fan-out. Best-effort only: the grouping engine still keys on
// record content, but the id lets a future backend reconstruct the group.
func NewGroupID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// FanOut dispatches op for every target concurrently and waits for the whole
// batch to settle. There is no ordering between siblings, no short-circuit
// cancellation, no retry, and no rollback of the sub-operations that
// succeeded; a partial failure is reported, never repaired.
//
// Targets without a usable record id are not dispatched; they settle
// immediately as failures. Noop targets settle immediately as successes.
// Results come back in target order regardless of completion order.
func FanOut(ctx context.Context, targets []Target, op func(ctx context.Context, t Target) error) Result {
	result := Result{
		TotalCount: len(targets),
		Records:    make([]RecordResult, len(targets)),
	}

	var wg sync.WaitGroup
	for i, target := range targets {
		result.Records[i] = RecordResult{RecordID: target.RecordID, PetID: target.PetID}

		if target.Noop {
			result.Records[i].OK = true
			continue
		}
		if target.RecordID <= 0 && !isCreateTarget(target) {
			result.Records[i].Reason = reasonNoIdentifier
			continue
		}

		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			if err := op(ctx, target); err != nil {
				result.Records[i].Reason = err.Error()
				return
			}
			result.Records[i].OK = true
		}(i, target)
	}
	wg.Wait()

	for _, record := range result.Records {
		if record.OK {
			result.SuccessCount++
		}
	}
	return result
}

// isCreateTarget reports whether the target addresses a record that does not
// exist yet. Creation targets carry a pet id and no record id.
func isCreateTarget(t Target) bool {
	return t.RecordID == 0 && t.PetID > 0
}
