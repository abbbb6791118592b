package session

// transition is a single allowed edge in the booking lifecycle
type transition struct {
	from Status
	to   Status
}

// The complete forward graph. COMPLETED, CANCELLED and REJECTED are terminal:
// no edge leaves them. Owners may still edit or delete records parked in
// COMPLETED or CANCELLED (see permittedActions); that is a product rule for
// cleaning up history, not a transition.
var transitions = []transition{
	{from: StatusPending, to: StatusConfirmed},
	{from: StatusPending, to: StatusRejected},
	{from: StatusConfirmed, to: StatusInProgress},
	{from: StatusConfirmed, to: StatusCancelled},
	{from: StatusInProgress, to: StatusCompleted},
}

// CanTransition reports whether from→to is an explicitly allowed edge.
// Same-state pairs return false; callers treat a same-state request as an
// idempotent success instead of dispatching it.
func CanTransition(from, to Status) bool {
	for _, t := range transitions {
		if t.from == from && t.to == to {
			return true
		}
	}
	return false
}

// ownerActions maps statuses to the actions an owner may take on their own
// records. Historical records stay editable so owners can fix or remove them.
var ownerActions = map[Status]Actions{
	StatusPending:   {ActionEdit: true, ActionDelete: true},
	StatusCompleted: {ActionEdit: true, ActionDelete: true},
	StatusCancelled: {ActionEdit: true, ActionDelete: true},
}

// sitterUnclaimedActions apply to records no sitter holds yet
var sitterUnclaimedActions = map[Status]Actions{
	StatusPending: {ActionAccept: true, ActionDecline: true},
}

// sitterAssignedActions apply to records held by the acting sitter
var sitterAssignedActions = map[Status]Actions{
	StatusConfirmed:  {ActionStart: true},
	StatusInProgress: {ActionComplete: true},
}

// PermittedActions returns the set of actions the actor may take on a record
// in the given status. Pure table lookup; unknown statuses and roles yield
// the empty set (fail-closed). This table is the single source of truth for
// both UI affordances and pre-dispatch gating.
func PermittedActions(status Status, role Role, isAssignedSitter bool) Actions {
	var table map[Status]Actions
	switch role {
	case RoleOwner:
		table = ownerActions
	case RoleSitter:
		if isAssignedSitter {
			table = sitterAssignedActions
		} else {
			table = sitterUnclaimedActions
		}
	default:
		return Actions{}
	}

	permitted, ok := table[status]
	if !ok {
		return Actions{}
	}

	// Copy so callers cannot mutate the table
	result := make(Actions, len(permitted))
	for action := range permitted {
		result[action] = true
	}
	return result
}

// TargetStatus maps a status-changing action to the status it drives a record
// into. Edit and delete have no target status and return false.
func TargetStatus(action Action) (Status, bool) {
	switch action {
	case ActionAccept:
		return StatusConfirmed, true
	case ActionDecline:
		return StatusRejected, true
	case ActionStart:
		return StatusInProgress, true
	case ActionComplete:
		return StatusCompleted, true
	default:
		return "", false
	}
}
