package lastgood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prithvipulse/models"
)

func snapshot(region string, price float64) models.MarketTrendsResponse {
	return models.MarketTrendsResponse{
		Region:       region,
		MarketStatus: models.MarketBullish,
		Crops:        []models.MarketCrop{{ID: "1", Name: "Wheat", Price: price}},
	}
}

func TestStorePutLatest(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	_, ok := s.Latest("Punjab")
	assert.False(t, ok)

	s.Put("Punjab", snapshot("Punjab", 2400))
	got, ok := s.Latest("  punjab ")
	require.True(t, ok)
	assert.Equal(t, float64(2400), got.Crops[0].Price)

	s.Put("Punjab", snapshot("Punjab", 2500))
	got, _ = s.Latest("Punjab")
	assert.Equal(t, float64(2500), got.Crops[0].Price)
	assert.Equal(t, 1, s.Len())
}

func TestStoreKeysByRequestedRegion(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	s.Put("Punjab", snapshot("Punjab, India", 2400))

	got, ok := s.Latest("punjab")
	require.True(t, ok)
	assert.Equal(t, "Punjab, India", got.Region)
	_, ok = s.Latest("Punjab, India")
	assert.False(t, ok)
}

func TestStoreReturnsCopies(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	in := snapshot("Bihar", 1000)
	s.Put("Bihar", in)
	in.Crops[0].Price = 1

	got, _ := s.Latest("Bihar")
	got.Crops[0].Price = 2

	again, _ := s.Latest("Bihar")
	assert.Equal(t, float64(1000), again.Crops[0].Price)
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	s.Put("A", snapshot("A", 1))
	s.Put("B", snapshot("B", 2))
	_, _ = s.Latest("A")
	s.Put("C", snapshot("C", 3))

	_, ok := s.Latest("B")
	assert.False(t, ok)
	_, ok = s.Latest("A")
	assert.True(t, ok)
}

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)
}
