package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

func String(key, def string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	val = strings.TrimSpace(val)
	if !ok || val == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", def)
		}
		return def
	}
	if log != nil {
		shown := val
		if isSecret(key) {
			shown = "[redacted]"
		}
		log.Debug("Environment variable found, using environment", "value", shown)
	}
	return val
}

func isSecret(key string) bool {
	k := strings.ToUpper(key)
	for _, marker := range []string{"PASSWORD", "SECRET", "TOKEN", "HEADERS"} {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}

func Int(key string, def int, log *logger.Logger) int {
	if log != nil {
		log = log.With("env_var", key)
	}
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", def)
		}
		return def
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as int, using default", "providedVal", raw, "defaultVal", def, "error", err)
		}
		return def
	}
	return i
}

func Float(key string, def float64, log *logger.Logger) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as float, using default", "env_var", key, "providedVal", raw, "defaultVal", def, "error", err)
		}
		return def
	}
	return f
}

func Bool(key string, def bool, log *logger.Logger) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch raw {
	case "":
		return def
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Debug("Environment variable could not be parsed as bool, using default", "env_var", key, "providedVal", raw, "defaultVal", def)
		}
		return def
	}
}

// Duration accepts Go duration strings ("90s") or a bare integer of milliseconds.
func Duration(key string, def time.Duration, log *logger.Logger) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as duration, using default", "env_var", key, "providedVal", raw, "defaultVal", def.String())
		}
		return def
	}
	return d
}

// List splits a comma separated variable, dropping blanks.
func List(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	out := make([]string, 0, 4)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
