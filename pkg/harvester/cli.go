package harvester

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/srt-timetables/pkg/aggregator"
	"github.com/travigo/srt-timetables/pkg/browser"
	"github.com/travigo/srt-timetables/pkg/config"
	"github.com/travigo/srt-timetables/pkg/database"
	"github.com/travigo/srt-timetables/pkg/events"
	"github.com/travigo/srt-timetables/pkg/output"
	"github.com/travigo/srt-timetables/pkg/portal"
	"github.com/travigo/srt-timetables/pkg/redis_client"
	"github.com/travigo/srt-timetables/pkg/stationcache"
	"github.com/travigo/srt-timetables/pkg/stats"
	"github.com/travigo/srt-timetables/pkg/util"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "harvest",
		Usage: "Harvest weekly train timetables from the SRT D-Ticket portal",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "harvest the configured routes in both directions",
				Flags: append(sessionFlags(),
					&cli.StringFlag{
						Name:  "routes",
						Usage: "YAML file listing the routes to harvest",
						Value: config.DefaultSettings().RoutesFile,
					},
					&cli.DurationFlag{
						Name:  "request-delay",
						Usage: "Pause after every trip request",
						Value: config.DefaultSettings().RequestDelay,
					},
					&cli.DurationFlag{
						Name:  "error-delay",
						Usage: "Pause after a failed station pair",
						Value: config.DefaultSettings().ErrorDelay,
					},
					&cli.StringFlag{
						Name:  "timezone",
						Usage: "Timezone that decides which day is today",
						Value: config.DefaultSettings().Timezone,
					},
					&cli.BoolFlag{
						Name:  "ignore-case-match",
						Usage: "Match route names against stations ignoring case",
					},
					&cli.BoolFlag{
						Name:  "all-pairs",
						Usage: "Harvest every pair of stations instead of the configured routes",
					},
					&cli.IntFlag{
						Name:  "pairs-limit",
						Usage: "Only harvest the first N station pairs",
					},
					&cli.StringFlag{
						Name:     "repeat-every",
						Usage:    "Repeat the harvest every X (e.g. 24h)",
						Required: false,
					},
					&cli.StringFlag{
						Name:  "metrics-textfile",
						Usage: "Write run metrics to this Prometheus textfile",
					},
					&cli.BoolFlag{
						Name:  "redis",
						Usage: "Cache stations and publish route updates through Redis (also enabled by SRT_REDIS_ADDRESS)",
					},
					&cli.BoolFlag{
						Name:  "mongodb",
						Usage: "Archive route schedules in MongoDB (also enabled by SRT_MONGODB_CONNECTION)",
					},
				),
				Action: func(c *cli.Context) error {
					settings, err := settingsFromContext(c)
					if err != nil {
						return err
					}

					var routes []config.Route
					if !settings.AllPairs {
						routes, err = config.LoadRoutes(settings.RoutesFile)
						if err != nil {
							return err
						}
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					metrics := stats.NewMetrics()
					harvester := &Harvester{
						Store:      output.NewStore(settings.OutputDirectory),
						Metrics:    metrics,
						Delay:      settings.RequestDelay,
						ErrorDelay: settings.ErrorDelay,
						IgnoreCase: settings.IgnoreCaseMatch,
					}

					if c.Bool("redis") || redis_client.Configured() {
						if err := redis_client.Connect(); err != nil {
							log.Fatal().Err(err).Msg("Failed to connect to Redis")
						}
						defer redis_client.Disconnect()

						harvester.StationCache = stationcache.New(redis_client.Client, stationcache.DefaultExpiration)

						publisher, err := events.NewPublisher()
						if err != nil {
							log.Fatal().Err(err).Msg("Failed to open events queue")
						}
						harvester.Sinks = append(harvester.Sinks, publisher)
					}

					if c.Bool("mongodb") || database.Configured() {
						if err := database.Connect(); err != nil {
							log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
						}
						defer database.Disconnect()

						harvester.Sinks = append(harvester.Sinks, output.NewArchive())
					}

					repeat := settings.RepeatEvery > 0

					for {
						startTime := time.Now()

						err := harvestOnce(ctx, settings, harvester, routes)
						if err != nil && !repeat {
							return err
						} else if err != nil {
							log.Error().Err(err).Msg("Harvest failed")
						}

						if settings.MetricsTextfile != "" {
							if err := metrics.WriteTextfile(settings.MetricsTextfile); err != nil {
								log.Error().Err(err).Str("path", settings.MetricsTextfile).Msg("Failed to write metrics")
							}
						}

						if !repeat {
							break
						}

						executionDuration := time.Since(startTime)
						log.Info().Msgf("Operation took %s", executionDuration.String())

						waitTime := settings.RepeatEvery - executionDuration

						if err := util.Sleep(ctx, waitTime); err != nil {
							log.Info().Msg("Stopping")
							break
						}
					}

					return nil
				},
			},
			{
				Name:  "stations",
				Usage: "fetch and save the station directory",
				Flags: sessionFlags(),
				Action: func(c *cli.Context) error {
					settings, err := settingsFromContext(c)
					if err != nil {
						return err
					}

					ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
					defer stop()

					session, err := browser.Open(ctx, browserOptions(settings))
					if err != nil {
						return err
					}
					defer session.Close()

					result := portal.NewClient(session, settings.PortalURL).FetchStations(ctx)
					if result.Err != nil {
						return result.Err
					}

					return output.NewStore(settings.OutputDirectory).SaveStations(result.Stations)
				},
			},
		},
	}
}

// harvestOnce runs one full pass over a fresh browser session
func harvestOnce(ctx context.Context, settings config.Settings, harvester *Harvester, routes []config.Route) error {
	location, err := settings.Location()
	if err != nil {
		return err
	}

	session, err := browser.Open(ctx, browserOptions(settings))
	if err != nil {
		return err
	}
	defer session.Close()

	client := portal.NewClient(session, settings.PortalURL)

	harvester.Stations = client
	harvester.Weeks = &aggregator.Aggregator{
		Trips:    client,
		Delay:    settings.RequestDelay,
		Location: location,
		Observe:  harvester.Metrics.ObserveDay,
	}

	if settings.AllPairs {
		harvester.RunPairs(ctx, settings.PairsLimit)
	} else {
		harvester.Run(ctx, routes)
	}

	return nil
}

func browserOptions(settings config.Settings) browser.Options {
	return browser.Options{
		PortalURL:         portal.LandingURL(settings.PortalURL),
		Headless:          settings.Headless,
		UserAgent:         settings.UserAgent,
		ExecPath:          settings.ChromePath,
		NavigationTimeout: settings.NavigationTimeout,
		NavigationRetries: settings.NavigationRetries,
		RequestTimeout:    settings.RequestTimeout,
		ProbeTimeout:      settings.ProbeTimeout,
		CloseGrace:        settings.CloseGrace,
		ScreenshotPath:    settings.ScreenshotPath,
	}
}

func sessionFlags() []cli.Flag {
	defaults := config.DefaultSettings()

	return []cli.Flag{
		&cli.StringFlag{
			Name:  "output",
			Usage: "Directory the JSON files are written to",
			Value: defaults.OutputDirectory,
		},
		&cli.StringFlag{
			Name:  "portal-url",
			Usage: "Base URL of the D-Ticket portal",
			Value: defaults.PortalURL,
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the browser without a window",
			Value: defaults.Headless,
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Usage: "User agent the browser presents",
			Value: defaults.UserAgent,
		},
		&cli.StringFlag{
			Name:  "chrome-path",
			Usage: "Path to the Chrome executable",
		},
		&cli.DurationFlag{
			Name:  "navigation-timeout",
			Usage: "How long the portal may take to load",
			Value: defaults.NavigationTimeout,
		},
		&cli.Uint64Flag{
			Name:  "navigation-retries",
			Usage: "Extra attempts at loading the portal",
			Value: defaults.NavigationRetries,
		},
		&cli.DurationFlag{
			Name:  "request-timeout",
			Usage: "Timeout for each portal request",
			Value: defaults.RequestTimeout,
		},
		&cli.DurationFlag{
			Name:  "probe-timeout",
			Usage: "How long to look for the cookie and language controls",
			Value: defaults.ProbeTimeout,
		},
		&cli.DurationFlag{
			Name:  "close-grace",
			Usage: "Pause before the browser is closed",
			Value: defaults.CloseGrace,
		},
		&cli.StringFlag{
			Name:  "screenshot",
			Usage: "Where to save a screenshot when the portal fails to load",
			Value: defaults.ScreenshotPath,
		},
	}
}

// flagValues is the subset of cli.Context that settings are read from
type flagValues interface {
	IsSet(name string) bool
	String(name string) string
	Bool(name string) bool
	Int(name string) int
	Uint64(name string) uint64
	Duration(name string) time.Duration
}

func settingsFromContext(c flagValues) (config.Settings, error) {
	settings := config.DefaultSettings()

	stringFlags := map[string]*string{
		"output":           &settings.OutputDirectory,
		"portal-url":       &settings.PortalURL,
		"user-agent":       &settings.UserAgent,
		"chrome-path":      &settings.ChromePath,
		"screenshot":       &settings.ScreenshotPath,
		"routes":           &settings.RoutesFile,
		"timezone":         &settings.Timezone,
		"metrics-textfile": &settings.MetricsTextfile,
	}
	for name, value := range stringFlags {
		if c.IsSet(name) {
			*value = c.String(name)
		}
	}

	boolFlags := map[string]*bool{
		"headless":          &settings.Headless,
		"ignore-case-match": &settings.IgnoreCaseMatch,
		"all-pairs":         &settings.AllPairs,
	}
	for name, value := range boolFlags {
		if c.IsSet(name) {
			*value = c.Bool(name)
		}
	}

	durationFlags := map[string]*time.Duration{
		"navigation-timeout": &settings.NavigationTimeout,
		"request-timeout":    &settings.RequestTimeout,
		"probe-timeout":      &settings.ProbeTimeout,
		"close-grace":        &settings.CloseGrace,
		"request-delay":      &settings.RequestDelay,
		"error-delay":        &settings.ErrorDelay,
	}
	for name, value := range durationFlags {
		if c.IsSet(name) {
			*value = c.Duration(name)
		}
	}

	if c.IsSet("navigation-retries") {
		settings.NavigationRetries = c.Uint64("navigation-retries")
	}
	if c.IsSet("pairs-limit") {
		settings.PairsLimit = c.Int("pairs-limit")
	}

	if c.IsSet("repeat-every") {
		repeatDuration, err := time.ParseDuration(c.String("repeat-every"))
		if err != nil {
			return settings, err
		}
		settings.RepeatEvery = repeatDuration
	}

	return settings, settings.Validate()
}
