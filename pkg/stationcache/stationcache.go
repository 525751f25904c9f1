package stationcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/srt-timetables/pkg/timetable"
)

const stationsKey = "srt-timetables:stations"

const DefaultExpiration = 24 * time.Hour

// StationCache holds the last good station directory so a run can continue when
// the portal refuses the directory request
type StationCache struct {
	Cache *cache.Cache[string]
}

func New(client *redis.Client, expiration time.Duration) *StationCache {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}

	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &StationCache{
		Cache: cache.New[string](redisStore),
	}
}

func (s *StationCache) Get(ctx context.Context) ([]timetable.Station, bool) {
	value, err := s.Cache.Get(ctx, stationsKey)
	if err != nil {
		return nil, false
	}

	var stations []timetable.Station
	if err := json.Unmarshal([]byte(value), &stations); err != nil {
		log.Error().Err(err).Msg("Failed to decode cached stations")
		return nil, false
	}

	if len(stations) == 0 {
		return nil, false
	}

	return stations, true
}

func (s *StationCache) Set(ctx context.Context, stations []timetable.Station) error {
	if len(stations) == 0 {
		return nil
	}

	stationsJSON, err := json.Marshal(stations)
	if err != nil {
		return err
	}

	return s.Cache.Set(ctx, stationsKey, string(stationsJSON))
}
