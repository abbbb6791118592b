package session

import (
	"context"
	"fmt"

	"github.com/pawsit/pawsit-api/internal/pkg/bookingapi"
)

// Repository is the legacy booking backend, the only authority over record
// state. Interface for mocking in tests.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]bookingapi.BookingRecord, error)
	ListBySitter(ctx context.Context, sitterID int64) ([]bookingapi.BookingRecord, error)
	ListUpcoming(ctx context.Context) ([]bookingapi.BookingRecord, error)
	Create(ctx context.Context, req bookingapi.CreateBookingRequest) (*bookingapi.BookingRecord, error)
	Update(ctx context.Context, id int64, patch bookingapi.UpdateBookingRequest) (*bookingapi.BookingRecord, error)
	Remove(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, statusID int, sitterID *int64) (*bookingapi.BookingRecord, error)
}

// Directory resolves pet and owner display names. Lookups are best-effort;
// implementations return placeholders rather than errors.
type Directory interface {
	PetNames(ctx context.Context, ids []int64) map[int64]string
	OwnerName(ctx context.Context, id int64) string
}

// Service coordinates session-level operations: it folds flat records into
// sessions, gates every operation on the lifecycle table, and fans out
// multi-record mutations against the backend.
type Service struct {
	repo      Repository
	directory Directory
}

// NewService creates a session service
func NewService(repo Repository, directory Directory) *Service {
	return &Service{repo: repo, directory: directory}
}

// ListSessions fetches the records in scope, regroups them from scratch, and
// annotates each session with the actions the actor may take. Sessions are
// never cached; every call rebuilds them from the backend's truth.
func (s *Service) ListSessions(ctx context.Context, scope Scope, actorID int64) ([]SessionResponse, error) {
	var (
		wire []bookingapi.BookingRecord
		err  error
	)
	switch scope {
	case ScopeOwner:
		wire, err = s.repo.ListByOwner(ctx, actorID)
	case ScopeSitter:
		wire, err = s.repo.ListBySitter(ctx, actorID)
	case ScopeOpen:
		wire, err = s.repo.ListUpcoming(ctx)
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	records := RecordsFromWire(wire)
	if scope == ScopeOpen {
		records = filterOpen(records)
	}

	sessions := Group(records)

	allPetIDs := make([]int64, 0, len(records))
	for _, record := range records {
		allPetIDs = append(allPetIDs, record.PetID)
	}
	petNames := s.directory.PetNames(ctx, allPetIDs)

	responses := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		responses = append(responses, s.toResponse(ctx, &sessions[i], scope, actorID, petNames))
	}
	return responses, nil
}

// CreateSession creates one PENDING record per selected pet. All records
// share a timestamp-derived correlation id so the group could be
// reconstructed later, though grouping still keys on content.
func (s *Service) CreateSession(ctx context.Context, ownerID int64, req CreateSessionRequest) (*FanOutResponse, error) {
	startTime := normalizeTime(req.StartTime)
	endTime := normalizeTime(req.EndTime)
	if endTime <= startTime {
		return nil, ErrInvalidTimeRange
	}

	groupID := NewGroupID()
	targets := make([]Target, 0, len(req.PetIDs))
	for _, petID := range req.PetIDs {
		targets = append(targets, Target{PetID: petID})
	}

	result := FanOut(ctx, targets, func(ctx context.Context, t Target) error {
		_, err := s.repo.Create(ctx, bookingapi.CreateBookingRequest{
			PetID:           t.PetID,
			OwnerID:         ownerID,
			BookingDate:     req.BookingDate,
			StartTime:       startTime,
			EndTime:         endTime,
			StatusID:        StatusPending.WireID(),
			TotalCost:       req.TotalCost,
			SpecialRequests: req.SpecialRequests,
			BookingGroupID:  groupID,
			Location:        req.Location,
			Urgency:         req.Urgency,
		})
		return err
	})

	resp := buildFanOutResponse(result, "posted sitting request for", s.directory.PetNames(ctx, req.PetIDs))
	return &resp, nil
}

// UpdateSession edits the shared details of every targeted record. The whole
// operation is gated before dispatch: if any record does not permit an owner
// edit, nothing is sent.
func (s *Service) UpdateSession(ctx context.Context, ownerID int64, req UpdateSessionRequest) (*FanOutResponse, error) {
	patch, err := buildPatch(req)
	if err != nil {
		return nil, err
	}

	records, err := s.ownedRecords(ctx, ownerID, req.RecordIDs)
	if err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(records))
	for _, record := range records {
		if !PermittedActions(record.Status, RoleOwner, false).Has(ActionEdit) {
			return nil, fmt.Errorf("record %d is %s: %w", record.ID, record.Status, ErrActionNotAllowed)
		}
		targets = append(targets, Target{RecordID: record.ID, PetID: record.PetID})
	}

	result := FanOut(ctx, targets, func(ctx context.Context, t Target) error {
		_, err := s.repo.Update(ctx, t.RecordID, patch)
		return err
	})

	resp := buildFanOutResponse(result, "updated booking for", s.petNamesFor(ctx, targets))
	return &resp, nil
}

// DeleteSession removes every targeted record, gated like UpdateSession.
func (s *Service) DeleteSession(ctx context.Context, ownerID int64, req DeleteSessionRequest) (*FanOutResponse, error) {
	records, err := s.ownedRecords(ctx, ownerID, req.RecordIDs)
	if err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(records))
	for _, record := range records {
		if !PermittedActions(record.Status, RoleOwner, false).Has(ActionDelete) {
			return nil, fmt.Errorf("record %d is %s: %w", record.ID, record.Status, ErrActionNotAllowed)
		}
		targets = append(targets, Target{RecordID: record.ID, PetID: record.PetID})
	}

	result := FanOut(ctx, targets, func(ctx context.Context, t Target) error {
		return s.repo.Remove(ctx, t.RecordID)
	})

	resp := buildFanOutResponse(result, "deleted booking for", s.petNamesFor(ctx, targets))
	return &resp, nil
}

// ChangeStatus advances every targeted record via one of the status actions:
// accept, decline, start, complete, or cancel. Illegal transitions reject the
// whole operation before dispatch; records already in the requested status
// settle as idempotent successes without a backend call.
func (s *Service) ChangeStatus(ctx context.Context, actorID int64, req StatusChangeRequest) (*FanOutResponse, error) {
	action := Action(req.Action)

	target, verb, err := s.resolveStatusAction(action)
	if err != nil {
		return nil, err
	}

	records, err := s.statusChangeRecords(ctx, action, actorID, req.RecordIDs)
	if err != nil {
		return nil, err
	}

	var sitterID *int64
	if action == ActionAccept {
		sitterID = &actorID
	}

	targets := make([]Target, 0, len(records))
	for _, record := range records {
		if record.Status == target {
			// Same-state settles as a no-op success, but only for the
			// actor whose earlier request produced that state.
			if err := s.gateNoop(record, action, actorID); err != nil {
				return nil, err
			}
			targets = append(targets, Target{RecordID: record.ID, PetID: record.PetID, Noop: true})
			continue
		}
		if err := s.gateStatusChange(record, action, target, actorID); err != nil {
			return nil, err
		}
		targets = append(targets, Target{RecordID: record.ID, PetID: record.PetID})
	}

	result := FanOut(ctx, targets, func(ctx context.Context, t Target) error {
		_, err := s.repo.SetStatus(ctx, t.RecordID, target.WireID(), sitterID)
		return err
	})

	resp := buildFanOutResponse(result, verb, s.petNamesFor(ctx, targets))
	return &resp, nil
}

// actionCancel lets an owner cancel a confirmed session. It is outside the
// six-action table; the transition graph alone gates it.
const actionCancel = Action("cancel")

func (s *Service) resolveStatusAction(action Action) (Status, string, error) {
	if action == actionCancel {
		return StatusCancelled, "cancelled booking for", nil
	}
	target, ok := TargetStatus(action)
	if !ok {
		return "", "", fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	verbs := map[Action]string{
		ActionAccept:   "accepted booking for",
		ActionDecline:  "declined booking for",
		ActionStart:    "started sitting job for",
		ActionComplete: "completed sitting job for",
	}
	return target, verbs[action], nil
}

// statusChangeRecords loads the current state of the targeted records from
// the listing the acting capacity can see.
func (s *Service) statusChangeRecords(ctx context.Context, action Action, actorID int64, recordIDs []int64) ([]BookingRecord, error) {
	var (
		wire []bookingapi.BookingRecord
		err  error
	)
	switch action {
	case ActionAccept, ActionDecline:
		wire, err = s.repo.ListUpcoming(ctx)
	case ActionStart, ActionComplete:
		wire, err = s.repo.ListBySitter(ctx, actorID)
	case actionCancel:
		wire, err = s.repo.ListByOwner(ctx, actorID)
	default:
		return nil, fmt.Errorf("%q: %w", action, ErrUnknownAction)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return selectRecords(RecordsFromWire(wire), recordIDs)
}

// gateNoop guards records already in the requested status. Idempotent
// convergence is for retrying one's own half-failed batch; a record parked
// in the target status by someone else is a conflict, not a success.
func (s *Service) gateNoop(record BookingRecord, action Action, actorID int64) error {
	switch action {
	case ActionAccept, ActionStart, ActionComplete:
		if record.IsAssignedTo(actorID) {
			return nil
		}
		if action == ActionAccept {
			return fmt.Errorf("record %d: %w", record.ID, ErrRecordClaimed)
		}
		return fmt.Errorf("record %d: %w", record.ID, ErrNotAssignedSitter)
	case actionCancel:
		if record.OwnerID != actorID {
			return fmt.Errorf("record %d: %w", record.ID, ErrNotRecordOwner)
		}
	}
	// Decline leaves the record unclaimed; re-declining a REJECTED record
	// converges for any sitter.
	return nil
}

func (s *Service) gateStatusChange(record BookingRecord, action Action, target Status, actorID int64) error {
	switch action {
	case ActionAccept, ActionDecline:
		if record.IsClaimed() {
			return fmt.Errorf("record %d: %w", record.ID, ErrRecordClaimed)
		}
		if !PermittedActions(record.Status, RoleSitter, false).Has(action) {
			return fmt.Errorf("record %d is %s: %w", record.ID, record.Status, ErrActionNotAllowed)
		}
	case ActionStart, ActionComplete:
		if !record.IsAssignedTo(actorID) {
			return fmt.Errorf("record %d: %w", record.ID, ErrNotAssignedSitter)
		}
		if !PermittedActions(record.Status, RoleSitter, true).Has(action) {
			return fmt.Errorf("record %d is %s: %w", record.ID, record.Status, ErrActionNotAllowed)
		}
	case actionCancel:
		if record.OwnerID != actorID {
			return fmt.Errorf("record %d: %w", record.ID, ErrNotRecordOwner)
		}
	}

	if !CanTransition(record.Status, target) {
		return fmt.Errorf("record %d: %s -> %s: %w", record.ID, record.Status, target, ErrInvalidTransition)
	}
	return nil
}

// ownedRecords resolves the targeted ids against the owner's own records.
// Ids the owner cannot see are reported as not found, never dispatched.
func (s *Service) ownedRecords(ctx context.Context, ownerID int64, recordIDs []int64) ([]BookingRecord, error) {
	wire, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return selectRecords(RecordsFromWire(wire), recordIDs)
}

func selectRecords(records []BookingRecord, recordIDs []int64) ([]BookingRecord, error) {
	if len(recordIDs) == 0 {
		return nil, ErrNoRecords
	}

	byID := make(map[int64]BookingRecord, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}

	selected := make([]BookingRecord, 0, len(recordIDs))
	for _, id := range recordIDs {
		record, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("record %d: %w", id, ErrRecordNotFound)
		}
		selected = append(selected, record)
	}
	return selected, nil
}

func (s *Service) petNamesFor(ctx context.Context, targets []Target) map[int64]string {
	ids := make([]int64, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.PetID)
	}
	return s.directory.PetNames(ctx, ids)
}

func (s *Service) toResponse(ctx context.Context, sess *BookingSession, scope Scope, actorID int64, petNames map[int64]string) SessionResponse {
	rep := sess.Representative()

	names := make([]string, 0, len(sess.PetIDs))
	for _, id := range sess.PetIDs {
		if name, ok := petNames[id]; ok && name != "" {
			names = append(names, name)
		} else {
			names = append(names, fmt.Sprintf("Pet #%d", id))
		}
	}

	resp := SessionResponse{
		RepresentativeID: sess.RepresentativeID,
		RecordIDs:        sess.RecordIDs,
		PetIDs:           sess.PetIDs,
		PetNames:         names,
		BookingDate:      rep.BookingDate,
		StartTime:        rep.StartTime,
		EndTime:          rep.EndTime,
		Status:           sess.Status(),
		TotalCost:        rep.TotalCost,
		SpecialRequests:  rep.SpecialRequests,
		Location:         rep.Location,
		Urgency:          rep.Urgency,
		OwnerID:          rep.OwnerID,
		SitterID:         rep.SitterID,
	}

	switch scope {
	case ScopeOwner:
		resp.PermittedActions = PermittedActions(sess.Status(), RoleOwner, false).List()
	case ScopeSitter:
		resp.PermittedActions = PermittedActions(sess.Status(), RoleSitter, rep.IsAssignedTo(actorID)).List()
		resp.OwnerName = s.directory.OwnerName(ctx, rep.OwnerID)
	case ScopeOpen:
		resp.PermittedActions = PermittedActions(sess.Status(), RoleSitter, false).List()
		resp.OwnerName = s.directory.OwnerName(ctx, rep.OwnerID)
	}
	return resp
}

// filterOpen keeps unclaimed pending records only
func filterOpen(records []BookingRecord) []BookingRecord {
	open := make([]BookingRecord, 0, len(records))
	for _, record := range records {
		if record.Status == StatusPending && !record.IsClaimed() {
			open = append(open, record)
		}
	}
	return open
}

func buildPatch(req UpdateSessionRequest) (bookingapi.UpdateBookingRequest, error) {
	var patch bookingapi.UpdateBookingRequest

	if (req.StartTime == nil) != (req.EndTime == nil) {
		return patch, ErrIncompleteRange
	}
	if req.StartTime != nil && req.EndTime != nil {
		startTime := normalizeTime(*req.StartTime)
		endTime := normalizeTime(*req.EndTime)
		if endTime <= startTime {
			return patch, ErrInvalidTimeRange
		}
		patch.StartTime = &startTime
		patch.EndTime = &endTime
	}

	patch.BookingDate = req.BookingDate
	patch.Location = req.Location
	patch.SpecialRequests = req.SpecialRequests
	patch.TotalCost = req.TotalCost
	return patch, nil
}

// normalizeTime pads HH:MM to HH:MM:SS so times compare lexicographically
func normalizeTime(t string) string {
	if len(t) == 5 {
		return t + ":00"
	}
	return t
}
