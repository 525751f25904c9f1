package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RouteSchedulesCollection = "route_schedules"

func createIndexes() {
	createRouteSchedulesIndexes()
}

func createRouteSchedulesIndexes() {
	routeSchedulesCollection := GetCollection(RouteSchedulesCollection)
	routeSchedulesIndex := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "harvestedat", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "from.stationid", Value: 1}, {Key: "to.stationid", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := routeSchedulesCollection.Indexes().CreateMany(context.Background(), routeSchedulesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
