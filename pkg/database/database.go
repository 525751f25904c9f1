package database

import (
	"context"
	"time"

	"github.com/travigo/srt-timetables/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "srt-timetables"

// Configured reports whether a MongoDB connection has been set up in the environment
func Configured() bool {
	return util.GetEnvironmentVariables()["SRT_MONGODB_CONNECTION"] != ""
}

func Connect() error {
	connectionString := defaultMongoConnectionString
	dbName := defaultMongoDatabase

	env := util.GetEnvironmentVariables()

	if env["SRT_MONGODB_CONNECTION"] != "" {
		connectionString = env["SRT_MONGODB_CONNECTION"]
	}

	if env["SRT_MONGODB_DATABASE"] != "" {
		dbName = env["SRT_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return err
	}

	createIndexes()

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}

func Disconnect() {
	if MongoGlobalInstance == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	MongoGlobalInstance.Client.Disconnect(ctx)
}
