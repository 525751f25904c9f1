package config

import (
	"time"

	"github.com/go-playground/validator/v10"

	_ "time/tzdata"
)

const (
	DefaultPortalURL = "https://dticket.railway.co.th/DTicketPublicWeb"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultTimezone  = "Asia/Bangkok"
)

// Settings holds the options for a single harvest run
type Settings struct {
	PortalURL       string `validate:"required,url"`
	RoutesFile      string
	OutputDirectory string `validate:"required"`

	Headless   bool
	UserAgent  string `validate:"required"`
	ChromePath string

	RequestDelay      time.Duration `validate:"gte=0"`
	ErrorDelay        time.Duration `validate:"gte=0"`
	NavigationTimeout time.Duration `validate:"gt=0"`
	NavigationRetries uint64
	RequestTimeout    time.Duration `validate:"gt=0"`
	ProbeTimeout      time.Duration `validate:"gt=0"`
	CloseGrace        time.Duration `validate:"gte=0"`
	ScreenshotPath    string

	Timezone        string `validate:"required"`
	IgnoreCaseMatch bool

	AllPairs   bool
	PairsLimit int `validate:"gte=0"`

	RepeatEvery     time.Duration `validate:"gte=0"`
	MetricsTextfile string
}

func DefaultSettings() Settings {
	return Settings{
		PortalURL:         DefaultPortalURL,
		RoutesFile:        "data/routes.yaml",
		OutputDirectory:   "data",
		Headless:          true,
		UserAgent:         DefaultUserAgent,
		RequestDelay:      2 * time.Second,
		ErrorDelay:        5 * time.Second,
		NavigationTimeout: 60 * time.Second,
		RequestTimeout:    30 * time.Second,
		ProbeTimeout:      5 * time.Second,
		CloseGrace:        5 * time.Second,
		ScreenshotPath:    "error.png",
		Timezone:          DefaultTimezone,
	}
}

func (s Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		return err
	}

	_, err := s.Location()
	return err
}

func (s Settings) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}
