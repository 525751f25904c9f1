package stationcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/srt-timetables/pkg/timetable"
)

func newTestCache(t *testing.T) (*StationCache, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, time.Hour), server
}

func TestStationCacheRoundTrip(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	stationCache, _ := newTestCache(t)

	_, found := stationCache.Get(ctx)
	assert.False(found)

	stations := []timetable.Station{
		{StationID: "1", StationNo: 1001, StationNameEn: "Bangkok", StationCodeEn: "BKK"},
		{StationID: "2", StationNo: 1002, StationNameEn: "Chiang Mai", StationCodeEn: "CMI"},
	}
	require.NoError(t, stationCache.Set(ctx, stations))

	cached, found := stationCache.Get(ctx)
	assert.True(found)
	assert.Equal(stations, cached)
}

func TestStationCacheIgnoresEmpty(t *testing.T) {
	ctx := context.Background()

	stationCache, server := newTestCache(t)

	require.NoError(t, stationCache.Set(ctx, nil))
	assert.False(t, server.Exists(stationsKey))
}

func TestStationCacheExpires(t *testing.T) {
	ctx := context.Background()

	stationCache, server := newTestCache(t)

	require.NoError(t, stationCache.Set(ctx, []timetable.Station{{StationID: "1", StationNameEn: "Bangkok"}}))
	server.FastForward(2 * time.Hour)

	_, found := stationCache.Get(ctx)
	assert.False(t, found)
}

func TestStationCacheCorruptValue(t *testing.T) {
	stationCache, server := newTestCache(t)

	require.NoError(t, server.Set(stationsKey, "{not json"))

	_, found := stationCache.Get(context.Background())
	assert.False(t, found)
}
