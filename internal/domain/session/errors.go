package session

import "errors"

var (
	ErrNoRecords         = errors.New("no booking records targeted")
	ErrNotRecordOwner    = errors.New("you can only modify your own bookings")
	ErrActionNotAllowed  = errors.New("action is not permitted in the current status")
	ErrInvalidTransition = errors.New("status transition is not allowed")
	ErrRecordClaimed     = errors.New("booking has already been claimed by another sitter")
	ErrNotAssignedSitter = errors.New("booking is assigned to another sitter")
	ErrRecordNotFound    = errors.New("booking record not found")
	ErrUnknownAction     = errors.New("unknown action")
	ErrInvalidTimeRange  = errors.New("end time must be after start time")
	ErrIncompleteRange   = errors.New("start time and end time must be provided together")
)
