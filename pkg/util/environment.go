package util

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadDotEnv pulls a local .env file into the process environment if one exists
func LoadDotEnv() {
	_ = godotenv.Load()
}

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}
