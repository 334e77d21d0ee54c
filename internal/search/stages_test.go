package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/go_service_finder/internal/models"
)

func TestFilter_Conjunction(t *testing.T) {
	candidates := ranked(
		service("1", "Plumber", "Hyderabad", intPtr(400), floatPtr(4.5), nil),
		service("2", "plumber", "Secunderabad", intPtr(450), floatPtr(4.1), nil),
		service("3", "Plumber", "Pune", intPtr(300), floatPtr(4.8), nil),
		service("4", "Electrician", "Hyderabad", intPtr(200), floatPtr(5), nil),
		service("5", "Plumber", "Hyderabad", intPtr(900), floatPtr(4.9), nil),
		service("6", "Plumber", "Hyderabad", intPtr(100), floatPtr(3.9), nil),
		service("7", "Plumber", "Old Hyderabad", nil, floatPtr(4.0), nil),
	)
	qc := models.QueryContext{
		CategoryHint: "Plumber",
		CityHint:     "hyderabad",
		MaxPrice:     intPtr(500),
		MinRating:    floatPtr(4),
	}

	out := Filter(candidates, qc)

	assert.Equal(t, []string{"1", "7"}, ids(out))
	for _, r := range out {
		assert.True(t, Matches(r.Service, qc))
	}
}

func TestFilter_RatingFloorExcludesUnrated(t *testing.T) {
	candidates := ranked(service("1", "Gym", "Pune", nil, nil, nil))
	out := Filter(candidates, models.QueryContext{MinRating: floatPtr(4)})
	assert.Empty(t, out)
}

func TestFilter_MissingPricePasses(t *testing.T) {
	candidates := ranked(service("1", "Gym", "Pune", nil, nil, nil))
	out := Filter(candidates, models.QueryContext{MaxPrice: intPtr(500)})
	assert.Equal(t, []string{"1"}, ids(out))
}

func TestFilter_NoHintsKeepsOrder(t *testing.T) {
	candidates := ranked(
		service("b", "Gym", "Pune", nil, nil, nil),
		service("a", "Cafe", "Delhi", intPtr(10), floatPtr(1), nil),
	)
	assert.Equal(t, []string{"b", "a"}, ids(Filter(candidates, models.QueryContext{})))
}

func TestRankByDistance_Monotonic(t *testing.T) {
	user := point(17.40, 78.47)
	in := ranked(
		service("far", "Gym", "Mumbai", nil, nil, point(19.07, 72.87)),
		service("none", "Gym", "Hyderabad", nil, nil, nil),
		service("near", "Gym", "Hyderabad", nil, nil, point(17.41, 78.48)),
		service("here", "Gym", "Hyderabad", nil, nil, point(17.40, 78.47)),
		service("mid", "Gym", "Pune", nil, nil, point(18.52, 73.85)),
	)

	out := RankByDistance(in, user)

	require.Len(t, out, 5)
	assert.Equal(t, []string{"here", "near", "mid", "far", "none"}, ids(out))
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, *out[i-1].DistanceKm, *out[i].DistanceKm)
	}
	assert.True(t, math.IsInf(*out[4].DistanceKm, 1))
	assert.False(t, out[4].HasKnownDistance())
	assert.InDelta(t, 0, *out[0].DistanceKm, 1e-9)

	// входной срез не изменился
	assert.Equal(t, "far", in[0].Service.ID)
	assert.Nil(t, in[0].DistanceKm)
}

func TestRankByDistance_MissingCoordinatesLast(t *testing.T) {
	in := ranked(
		service("x1", "Gym", "", nil, nil, nil),
		service("c1", "Gym", "", nil, nil, point(28.61, 77.20)),
		service("x2", "Gym", "", nil, nil, nil),
		service("c2", "Gym", "", nil, nil, point(12.97, 77.59)),
	)

	out := RankByDistance(in, point(17.40, 78.47))

	assert.Equal(t, []string{"c2", "c1", "x1", "x2"}, ids(out))
}

func TestRankByDistance_StableTies(t *testing.T) {
	p := point(17.41, 78.48)
	in := ranked(
		service("first", "Gym", "", nil, nil, p),
		service("second", "Gym", "", nil, nil, p),
		service("third", "Gym", "", nil, nil, p),
	)
	out := RankByDistance(in, point(17.40, 78.47))
	assert.Equal(t, []string{"first", "second", "third"}, ids(out))
}

func TestRankByDistance_NoUserIsPassthrough(t *testing.T) {
	in := ranked(
		service("b", "Gym", "", nil, nil, point(19.07, 72.87)),
		service("a", "Gym", "", nil, nil, point(17.40, 78.47)),
	)
	out := RankByDistance(in, nil)
	assert.Equal(t, in, out)
	assert.Nil(t, out[0].DistanceKm)
}

func TestFormat_Truncates(t *testing.T) {
	records := make([]models.ServiceRecord, 10)
	for i := range records {
		records[i] = service(string(rune('a'+i)), "Cafe", "", nil, nil, nil)
	}
	in := ranked(records...)

	out := Format(in, 3)
	assert.Equal(t, in[:3], out)

	assert.Len(t, Format(in, 25), 10)
	assert.Empty(t, Format(in, 0))
	assert.Empty(t, Format(nil, 5))
}

func TestCards(t *testing.T) {
	d := 2.345
	inf := math.Inf(1)
	results := []models.RankedResult{
		{Service: service("1", "Plumber", "Hyderabad", intPtr(400), nil, point(17.4, 78.47)), DistanceKm: &d},
		{Service: service("2", "Plumber", "Hyderabad", nil, nil, nil), DistanceKm: &inf},
	}

	cards := Cards(results, point(17.40, 78.47))
	require.Len(t, cards, 2)
	assert.Equal(t, "2.3 km away", cards[0].DistanceText)
	assert.Equal(t, "₹400", cards[0].PriceText)
	assert.Equal(t, "tel:9876543210", cards[0].Links.Call)
	assert.Contains(t, cards[0].Links.Directions, "origin=17.4%2C78.47")
	assert.Equal(t, "Distance unknown", cards[1].DistanceText)
	assert.Empty(t, cards[1].PriceText)

	cards = Cards(results[:1], nil)
	assert.Empty(t, cards[0].DistanceText)
}
