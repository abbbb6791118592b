package session

import (
	"fmt"

	"github.com/pawsit/pawsit-api/internal/pkg/bookingapi"
)

// Status represents a booking record's lifecycle state
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusRejected   Status = "REJECTED"
)

// Legacy wire ids for statuses. The backend speaks numbers; everything in
// this package speaks Status.
var statusIDs = map[Status]int{
	StatusPending:    1,
	StatusConfirmed:  2,
	StatusInProgress: 3,
	StatusCompleted:  4,
	StatusCancelled:  5,
	StatusRejected:   6,
}

// StatusFromID maps a legacy wire id to a Status. Unknown ids map to the
// empty Status, which every lifecycle lookup treats as fail-closed.
func StatusFromID(id int) Status {
	for status, wireID := range statusIDs {
		if wireID == id {
			return status
		}
	}
	return ""
}

// WireID returns the legacy backend's numeric id for the status, or 0 for an
// unknown status.
func (s Status) WireID() int {
	return statusIDs[s]
}

// IsValid reports whether s is one of the six defined statuses.
func (s Status) IsValid() bool {
	_, ok := statusIDs[s]
	return ok
}

// Role is the capacity an actor acts in for a given operation
type Role string

const (
	RoleOwner  Role = "owner"
	RoleSitter Role = "sitter"
)

// Action is one of the six operations the lifecycle table gates
type Action string

const (
	ActionEdit     Action = "edit"
	ActionDelete   Action = "delete"
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

// Actions is a set of permitted actions
type Actions map[Action]bool

// Has reports whether the action is in the set
func (a Actions) Has(action Action) bool {
	return a[action]
}

// List returns the actions in a stable order for JSON output
func (a Actions) List() []Action {
	ordered := []Action{ActionEdit, ActionDelete, ActionAccept, ActionDecline, ActionStart, ActionComplete}
	result := make([]Action, 0, len(a))
	for _, action := range ordered {
		if a[action] {
			result = append(result, action)
		}
	}
	return result
}

// BookingRecord is the domain view of one persisted per-pet booking
type BookingRecord struct {
	ID              int64
	PetID           int64
	OwnerID         int64
	SitterID        *int64
	BookingDate     string // YYYY-MM-DD
	StartTime       string // HH:MM:SS
	EndTime         string // HH:MM:SS
	Status          Status
	TotalCost       *float64
	SpecialRequests string
	BookingGroupID  string
	Location        string
	Urgency         string
	CreatedAt       string
	UpdatedAt       string
}

// IsClaimed reports whether a sitter has accepted this record
func (r *BookingRecord) IsClaimed() bool {
	return r.SitterID != nil && *r.SitterID > 0
}

// IsAssignedTo reports whether the given sitter holds this record
func (r *BookingRecord) IsAssignedTo(sitterID int64) bool {
	return r.SitterID != nil && *r.SitterID == sitterID
}

// RecordFromWire converts a legacy backend record to the domain form
func RecordFromWire(w bookingapi.BookingRecord) BookingRecord {
	return BookingRecord{
		ID:              w.ID,
		PetID:           w.PetID,
		OwnerID:         w.OwnerID,
		SitterID:        w.SitterID,
		BookingDate:     w.BookingDate,
		StartTime:       w.StartTime,
		EndTime:         w.EndTime,
		Status:          StatusFromID(w.StatusID),
		TotalCost:       w.TotalCost,
		SpecialRequests: w.SpecialRequests,
		BookingGroupID:  w.BookingGroupID,
		Location:        w.Location,
		Urgency:         w.Urgency,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

// RecordsFromWire converts a list of legacy records
func RecordsFromWire(ws []bookingapi.BookingRecord) []BookingRecord {
	records := make([]BookingRecord, 0, len(ws))
	for _, w := range ws {
		records = append(records, RecordFromWire(w))
	}
	return records
}

// noRequestsSentinel stands in for empty special requests in the grouping
// key, so empty and absent values group identically.
const noRequestsSentinel = "none"

// Key is the composite grouping key derived from record content. The backend
// assigns no group identifier, so content equality is the only way to
// reassemble a multi-pet request.
type Key struct {
	BookingDate     string
	StartTime       string
	EndTime         string
	SpecialRequests string
}

// KeyOf computes the grouping key for a record
func KeyOf(r BookingRecord) Key {
	requests := r.SpecialRequests
	if requests == "" {
		requests = noRequestsSentinel
	}
	return Key{
		BookingDate:     r.BookingDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		SpecialRequests: requests,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s_%s_%s_%s", k.BookingDate, k.StartTime, k.EndTime, k.SpecialRequests)
}

// BookingSession is the derived, never-persisted grouping of records the UI
// perceives as one booking. Its identity lasts one read; the next refresh
// recomputes everything from scratch.
type BookingSession struct {
	Key              Key
	Records          []BookingRecord
	PetIDs           []int64
	RecordIDs        []int64
	RepresentativeID int64
}

// Status returns the representative record's status. Records in one session
// can hold divergent statuses after a partial fan-out failure; the first
// record encountered is what the UI shows.
func (s *BookingSession) Status() Status {
	if len(s.Records) == 0 {
		return ""
	}
	return s.Records[0].Status
}

// Representative returns the first record encountered for the session
func (s *BookingSession) Representative() *BookingRecord {
	if len(s.Records) == 0 {
		return nil
	}
	return &s.Records[0]
}
