package redis_client

import (
	"context"
	"strconv"

	"github.com/adjust/rmq/v5"
	"github.com/redis/go-redis/v9"
	"github.com/travigo/srt-timetables/pkg/util"
)

var Client *redis.Client
var QueueConnection rmq.Connection

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

const queueConnectionTag = "srt-timetables"

// Configured reports whether a redis address was supplied through the environment
func Configured() bool {
	return util.GetEnvironmentVariables()["SRT_REDIS_ADDRESS"] != ""
}

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["SRT_REDIS_ADDRESS"] != "" {
		address = env["SRT_REDIS_ADDRESS"]
	}

	if env["SRT_REDIS_PASSWORD"] != "" {
		password = env["SRT_REDIS_PASSWORD"]
	}

	if env["SRT_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["SRT_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	return ConnectWithOptions(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})
}

func ConnectWithOptions(options *redis.Options) error {
	Client = redis.NewClient(options)

	statusCmd := Client.Ping(context.Background())
	err := statusCmd.Err()
	if err != nil {
		return err
	}

	QueueConnection, err = rmq.OpenConnectionWithRedisClient(queueConnectionTag, Client, nil)
	if err != nil {
		return err
	}

	return nil
}

func Disconnect() {
	if Client != nil {
		Client.Close()
	}
}
