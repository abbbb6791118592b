package directory

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pawsit/pawsit-api/internal/pkg/bookingapi"
)

// Lookup fetches pet and user records from the legacy backend
type Lookup interface {
	GetPet(ctx context.Context, id int64) (*bookingapi.Pet, error)
	GetUser(ctx context.Context, id int64) (*bookingapi.User, error)
}

// Service resolves pet and owner display names through a read-through cache.
// Names are reference data: they change rarely and staleness is harmless, so
// they are the one thing this service caches. Sessions never are.
type Service struct {
	lookup Lookup
	cache  Cache
}

// NewService creates a directory service
func NewService(lookup Lookup, cache Cache) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Service{lookup: lookup, cache: cache}
}

const (
	keyPrefixPet   = "directory:pet:"
	keyPrefixOwner = "directory:owner:"
)

// PetNames resolves display names for the given pet ids. Ids that cannot be
// resolved are simply absent from the result; callers fall back to a
// placeholder.
func (s *Service) PetNames(ctx context.Context, ids []int64) map[int64]string {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, done := names[id]; done {
			continue
		}

		key := keyPrefixPet + strconv.FormatInt(id, 10)
		if name, ok := s.cache.Get(ctx, key); ok {
			names[id] = name
			continue
		}

		pet, err := s.lookup.GetPet(ctx, id)
		if err != nil {
			log.Warn().Err(err).Int64("pet_id", id).Msg("Pet lookup failed")
			continue
		}
		if pet.Name == "" {
			continue
		}

		names[id] = pet.Name
		s.cache.Set(ctx, key, pet.Name)
	}
	return names
}

// OwnerName resolves an owner's display name, or "" when unavailable
func (s *Service) OwnerName(ctx context.Context, id int64) string {
	if id <= 0 {
		return ""
	}

	key := keyPrefixOwner + strconv.FormatInt(id, 10)
	if name, ok := s.cache.Get(ctx, key); ok {
		return name
	}

	user, err := s.lookup.GetUser(ctx, id)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", id).Msg("Owner lookup failed")
		return ""
	}

	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return ""
	}

	s.cache.Set(ctx, key, name)
	return name
}
