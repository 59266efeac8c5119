package lastgood

import (
	"strings"

	"github.com/hashicorp/golang-lru/v2"

	"prithvipulse/models"
	"prithvipulse/ports"
)

// Store remembers the most recent backend-sourced market snapshot per region.
// Regions are matched case-insensitively; the least recently used region is
// evicted when the store is full.
type Store struct {
	cache *lru.Cache[string, models.MarketTrendsResponse]
}

func New(size int) (*Store, error) {
	cache, err := lru.New[string, models.MarketTrendsResponse](size)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

var _ ports.MarketSnapshotStore = (*Store)(nil)

// Put stores a copy of snapshot under region
func (s *Store) Put(region string, snapshot models.MarketTrendsResponse) {
	s.cache.Add(regionKey(region), snapshot.Clone())
}

// Latest returns a copy of the stored snapshot for region
func (s *Store) Latest(region string) (models.MarketTrendsResponse, bool) {
	snapshot, ok := s.cache.Get(regionKey(region))
	if !ok {
		return models.MarketTrendsResponse{}, false
	}
	return snapshot.Clone(), true
}

// Len reports how many regions are cached
func (s *Store) Len() int {
	return s.cache.Len()
}

func regionKey(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}
