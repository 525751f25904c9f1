package events

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/travigo/srt-timetables/pkg/redis_client"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Follow route schedule updates published by the harvester",
		Subcommands: []*cli.Command{
			{
				Name:  "watch",
				Usage: "log route schedule updates as they arrive",
				Action: func(c *cli.Context) error {
					if err := redis_client.Connect(); err != nil {
						return err
					}
					defer redis_client.Disconnect()

					if err := StartConsumers(redis_client.QueueConnection); err != nil {
						return err
					}

					signals := make(chan os.Signal, 1)
					signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
					defer signal.Stop(signals)

					<-signals // wait for signal
					go func() {
						<-signals // hard exit on second signal (in case shutdown gets stuck)
						os.Exit(1)
					}()

					<-redis_client.QueueConnection.StopAllConsuming() // wait for all Consume() calls to finish

					return nil
				},
			},
		},
	}
}
