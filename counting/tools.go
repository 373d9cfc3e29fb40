package rainflow

import (
	"log/slog"
	"math"
	"os"
	"strconv"
)

// FillEnvVar returns the value of a runtime Environment Variable
func FillEnvVar(ev string) string {
	// If the EnvVar doesn't exist return a default string
	value := os.Getenv(ev)
	if value == "" {
		value = "ENOENT"
	}
	return value
}

// FillEnvVarInt returns an integer Environment Variable,
// falling back to the given default when unset or malformed.
func FillEnvVarInt(ev string, def int) int {
	value := os.Getenv(ev)
	if value == "" {
		return def
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		slog.Error("Could not parse env var as int", slog.String("var", ev), slog.Any("Error", err))
		return def
	}
	return i
}

// FloatPrecise rounds a float to the given number of decimal places.
func FloatPrecise(f float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(f*shift) / shift
}
