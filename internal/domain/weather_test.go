package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestQueryString(t *testing.T) {
	assert.Equal(t, "12.9,77.6", CoordinateQuery(12.9, 77.6).String())
	assert.Equal(t, "-33.8688,151.2093", CoordinateQuery(-33.8688, 151.2093).String())
	assert.Equal(t, "0,0", CoordinateQuery(0, 0).String())
	assert.Equal(t, "Pune", PlaceQuery("  Pune ").String())
}

func TestQueryKinds(t *testing.T) {
	assert.True(t, CoordinateQuery(1, 2).IsCoordinates())
	assert.False(t, PlaceQuery("Oslo").IsCoordinates())
	assert.True(t, PlaceQuery("   ").IsZero())
	assert.False(t, CoordinateQuery(0, 0).IsZero())
}

func TestNewActivityEventUsesClock(t *testing.T) {
	at := time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(at))
	defer SetClock(nil)

	evt := NewActivityEvent(ActivityThemeChanged, "visitor-1", map[string]string{"theme": "dark"})

	assert.NotEmpty(t, evt.ID)
	assert.Equal(t, at, evt.OccurredAt)
	assert.Equal(t, ActivityThemeChanged, evt.Type)
	assert.Equal(t, "dark", evt.Attributes["theme"])
}
