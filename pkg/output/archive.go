package output

import (
	"context"
	"time"

	"github.com/travigo/srt-timetables/pkg/database"
	"github.com/travigo/srt-timetables/pkg/timetable"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type scheduleCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type ArchivedSchedule struct {
	Slug string

	From timetable.Station
	To   timetable.Station

	Forward  []timetable.AggregatedTrain
	Backward []timetable.AggregatedTrain

	HarvestedAt time.Time
}

// Archive keeps the latest schedule of every route in MongoDB
type Archive struct {
	Collection scheduleCollection
}

func NewArchive() *Archive {
	return &Archive{
		Collection: database.GetCollection(database.RouteSchedulesCollection),
	}
}

func (a *Archive) Name() string {
	return "mongodb-archive"
}

func (a *Archive) Publish(ctx context.Context, route SavedRoute) error {
	document := ArchivedSchedule{
		Slug:        route.Slug,
		From:        route.From,
		To:          route.To,
		Forward:     route.Schedule.Forward,
		Backward:    route.Schedule.Backward,
		HarvestedAt: route.HarvestedAt,
	}

	opts := options.Update().SetUpsert(true)
	_, err := a.Collection.UpdateOne(ctx, bson.M{"slug": route.Slug}, bson.M{"$set": document}, opts)

	return err
}
