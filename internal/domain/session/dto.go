package session

import "fmt"

// Scope selects which records a session listing is built from
type Scope string

const (
	ScopeOwner  Scope = "owner"  // records created by the acting owner
	ScopeSitter Scope = "sitter" // records claimed by the acting sitter
	ScopeOpen   Scope = "open"   // unclaimed pending records, any owner
)

// ParseScope validates a scope query parameter
func ParseScope(s string) (Scope, bool) {
	switch Scope(s) {
	case ScopeOwner, ScopeSitter, ScopeOpen:
		return Scope(s), true
	}
	return "", false
}

// CreateSessionRequest posts one sitting request covering several pets.
// The backend persists one record per pet; the fan-out creates them all.
type CreateSessionRequest struct {
	PetIDs          []int64  `json:"pet_ids" validate:"required,min=1,dive,gt=0"`
	BookingDate     string   `json:"booking_date" validate:"required,datetime=2006-01-02"`
	StartTime       string   `json:"start_time" validate:"required,time_of_day"`
	EndTime         string   `json:"end_time" validate:"required,time_of_day"`
	Location        string   `json:"location" validate:"required,max=500"`
	SpecialRequests string   `json:"special_requests" validate:"max=2000"`
	Urgency         string   `json:"urgency" validate:"urgency"`
	TotalCost       *float64 `json:"total_cost" validate:"omitempty,gte=0"`
}

// UpdateSessionRequest edits the shared details of every record in a session.
// Nil fields are left untouched.
type UpdateSessionRequest struct {
	RecordIDs       []int64  `json:"record_ids" validate:"required,min=1"`
	BookingDate     *string  `json:"booking_date" validate:"omitempty,datetime=2006-01-02"`
	StartTime       *string  `json:"start_time" validate:"omitempty,time_of_day"`
	EndTime         *string  `json:"end_time" validate:"omitempty,time_of_day"`
	Location        *string  `json:"location" validate:"omitempty,max=500"`
	SpecialRequests *string  `json:"special_requests" validate:"omitempty,max=2000"`
	TotalCost       *float64 `json:"total_cost" validate:"omitempty,gte=0"`
}

// DeleteSessionRequest removes every record in a session
type DeleteSessionRequest struct {
	RecordIDs []int64 `json:"record_ids" validate:"required,min=1"`
}

// StatusChangeRequest advances every record in a session through the
// lifecycle. Action is one of accept, decline, start, complete, cancel.
type StatusChangeRequest struct {
	RecordIDs []int64 `json:"record_ids" validate:"required,min=1"`
	Action    string  `json:"action" validate:"required"`
}

// SessionResponse is one derived session annotated for the calling actor
type SessionResponse struct {
	RepresentativeID int64    `json:"representative_id"`
	RecordIDs        []int64  `json:"record_ids"`
	PetIDs           []int64  `json:"pet_ids"`
	PetNames         []string `json:"pet_names"`
	BookingDate      string   `json:"booking_date"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	Status           Status   `json:"status"`
	TotalCost        *float64 `json:"total_cost,omitempty"`
	SpecialRequests  string   `json:"special_requests,omitempty"`
	Location         string   `json:"location,omitempty"`
	Urgency          string   `json:"urgency,omitempty"`
	OwnerID          int64    `json:"owner_id"`
	OwnerName        string   `json:"owner_name,omitempty"`
	SitterID         *int64   `json:"sitter_id,omitempty"`
	PermittedActions []Action `json:"permitted_actions"`
}

// FanOutResponse is the aggregated outcome of one batch operation. The three
// outcomes carry three distinct messages; partial success names the pets
// whose records now lag behind the rest of the session.
type FanOutResponse struct {
	Outcome      Outcome        `json:"outcome"`
	SuccessCount int            `json:"success_count"`
	TotalCount   int            `json:"total_count"`
	Message      string         `json:"message"`
	Records      []RecordResult `json:"records"`
}

// buildFanOutResponse renders a settled result with pet names resolved
func buildFanOutResponse(result Result, verb string, petNames map[int64]string) FanOutResponse {
	resp := FanOutResponse{
		Outcome:      result.Outcome(),
		SuccessCount: result.SuccessCount,
		TotalCount:   result.TotalCount,
		Records:      result.Records,
	}

	switch resp.Outcome {
	case FullSuccess:
		resp.Message = fmt.Sprintf("Successfully %s %d pet(s)", verb, result.TotalCount)
	case PartialSuccess:
		resp.Message = fmt.Sprintf("Partially successful: %s %d/%d pet(s). Failed for: %s",
			verb, result.SuccessCount, result.TotalCount, joinPetNames(result.FailedPetIDs(), petNames))
	default:
		resp.Message = fmt.Sprintf("Failed: %s 0/%d pet(s)", verb, result.TotalCount)
	}
	return resp
}

func joinPetNames(ids []int64, names map[int64]string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		if name, ok := names[id]; ok && name != "" {
			out += name
		} else {
			out += fmt.Sprintf("Pet #%d", id)
		}
	}
	return out
}
