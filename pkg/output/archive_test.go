package output

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travigo/srt-timetables/pkg/timetable"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	filter interface{}
	update interface{}
	upsert bool
	err    error
}

func (f *fakeCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.filter = filter
	f.update = update
	for _, opt := range opts {
		if opt.Upsert != nil {
			f.upsert = *opt.Upsert
		}
	}

	return &mongo.UpdateResult{}, f.err
}

func TestArchivePublish(t *testing.T) {
	assert := assert.New(t)

	collection := &fakeCollection{}
	archive := &Archive{Collection: collection}

	harvestedAt := time.Date(2024, time.January, 7, 10, 0, 0, 0, time.UTC)
	route := SavedRoute{
		Slug: "bangkok-(hua-lamphong)-to-chiang-mai",
		From: bangkok,
		To:   chiang,
		Schedule: timetable.CombinedRouteSchedule{
			Forward: []timetable.AggregatedTrain{{TrainNo: "9"}},
		},
		HarvestedAt: harvestedAt,
	}

	assert.NoError(archive.Publish(context.Background(), route))
	assert.Equal("mongodb-archive", archive.Name())
	assert.True(collection.upsert)
	assert.Equal(bson.M{"slug": route.Slug}, collection.filter)

	update := collection.update.(bson.M)
	document := update["$set"].(ArchivedSchedule)
	assert.Equal(route.Slug, document.Slug)
	assert.Equal("Chiang Mai", document.To.StationNameEn)
	assert.Len(document.Forward, 1)
	assert.Equal(harvestedAt, document.HarvestedAt)
}

func TestArchivePublishError(t *testing.T) {
	archive := &Archive{Collection: &fakeCollection{err: errors.New("connection refused")}}

	err := archive.Publish(context.Background(), SavedRoute{Slug: "a-to-b"})
	assert.EqualError(t, err, "connection refused")
}
