package bookingapi

// Wire types for the legacy booking backend. The legacy API speaks camelCase
// JSON and numeric ids; statuses travel as statusId with statusName echoed
// back on reads.

// BookingRecord is one persisted pet-sitting commitment for exactly one pet
// and one time window.
type BookingRecord struct {
	ID              int64    `json:"id"`
	PetID           int64    `json:"petId"`
	OwnerID         int64    `json:"ownerId"`
	SitterID        *int64   `json:"sitterId"`
	BookingDate     string   `json:"bookingDate"` // YYYY-MM-DD
	StartTime       string   `json:"startTime"`   // HH:MM:SS
	EndTime         string   `json:"endTime"`     // HH:MM:SS
	StatusID        int      `json:"statusId"`
	StatusName      string   `json:"statusName"`
	TotalCost       *float64 `json:"totalCost"`
	SpecialRequests string   `json:"specialRequests"`
	BookingGroupID  string   `json:"bookingGroupId"`
	Location        string   `json:"location"`
	Urgency         string   `json:"urgency"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

// CreateBookingRequest is the create payload for one record
type CreateBookingRequest struct {
	PetID           int64    `json:"petId"`
	OwnerID         int64    `json:"ownerId"`
	SitterID        *int64   `json:"sitterId"`
	BookingDate     string   `json:"bookingDate"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	StatusID        int      `json:"statusId"`
	TotalCost       *float64 `json:"totalCost"`
	SpecialRequests string   `json:"specialRequests"`
	BookingGroupID  string   `json:"bookingGroupId"`
	Location        string   `json:"location"`
	Urgency         string   `json:"urgency"`
}

// UpdateBookingRequest is a partial update; nil fields are left untouched
type UpdateBookingRequest struct {
	BookingDate     *string  `json:"bookingDate,omitempty"`
	StartTime       *string  `json:"startTime,omitempty"`
	EndTime         *string  `json:"endTime,omitempty"`
	TotalCost       *float64 `json:"totalCost,omitempty"`
	SpecialRequests *string  `json:"specialRequests,omitempty"`
	Location        *string  `json:"location,omitempty"`
	SitterID        *int64   `json:"sitterId,omitempty"`
	StatusID        *int     `json:"statusId,omitempty"`
}

// Pet is the subset of the legacy pet record the session views need
type Pet struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	TypeID int    `json:"typeId"`
	Breed  string `json:"breed"`
}

// User is the subset of the legacy user record the session views need
type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}
