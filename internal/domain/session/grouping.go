package session

import (
	"github.com/rs/zerolog/log"
)

// Group folds a flat record list into sessions by content-key equality.
// Pure function of its input: no network, no side effects beyond a warning
// log for dropped records, safe to call on every refresh.
//
// Sessions come back in first-encounter order and pet ids within a session
// in encounter order, so the same input always produces the same output.
// Two unrelated bookings that coincide on date, time window, and empty
// special requests merge into one session; that is a known limitation of the
// derived key, kept until the backend issues a real group id.
func Group(records []BookingRecord) []BookingSession {
	groups := make(map[Key]*BookingSession)
	var order []Key

	for _, record := range records {
		if record.ID <= 0 {
			// A record without a usable id cannot be targeted by any
			// follow-up operation; dropping it beats corrupting a group.
			log.Warn().
				Int64("pet_id", record.PetID).
				Str("booking_date", record.BookingDate).
				Msg("Skipping booking record without a valid id")
			continue
		}

		key := KeyOf(record)
		group, ok := groups[key]
		if !ok {
			group = &BookingSession{
				Key:              key,
				RepresentativeID: record.ID,
			}
			groups[key] = group
			order = append(order, key)
		}

		group.Records = append(group.Records, record)
		group.PetIDs = append(group.PetIDs, record.PetID)
		group.RecordIDs = append(group.RecordIDs, record.ID)
	}

	sessions := make([]BookingSession, 0, len(order))
	for _, key := range order {
		sessions = append(sessions, *groups[key])
	}
	return sessions
}
