package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var ErrNoRoutes = errors.New("no routes configured")

// Route is a pair of station name fragments, harvested in both directions
type Route struct {
	Source      string `yaml:"source" validate:"required"`
	Destination string `yaml:"destination" validate:"required"`
}

func (r Route) String() string {
	return fmt.Sprintf("%s to %s", r.Source, r.Destination)
}

type RouteFile struct {
	Routes []Route `yaml:"routes" validate:"dive"`
}

// DefaultRoutes is used when no routes file exists
var DefaultRoutes = []Route{
	{Source: "Krung Thep Aphiwat", Destination: "Surat Thani"},
	{Source: "Krung Thep Aphiwat", Destination: "Chiang Mai"},
	{Source: "Bangkok", Destination: "Pattaya"},
}

func LoadRoutes(path string) ([]Route, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", path).Int("routes", len(DefaultRoutes)).Msg("Routes file not found, using default routes")

		return DefaultRoutes, nil
	}
	if err != nil {
		return nil, err
	}

	routes, err := ParseRoutes(data)
	if err != nil {
		return nil, fmt.Errorf("routes file %s: %w", path, err)
	}

	log.Debug().Str("path", path).Int("routes", len(routes)).Msg("Loaded routes file")

	return routes, nil
}

func ParseRoutes(data []byte) ([]Route, error) {
	var routeFile RouteFile
	if err := yaml.Unmarshal(data, &routeFile); err != nil {
		return nil, err
	}

	if len(routeFile.Routes) == 0 {
		return nil, ErrNoRoutes
	}

	if err := validator.New().Struct(routeFile); err != nil {
		return nil, err
	}

	return routeFile.Routes, nil
}
