package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Logger wraps a zap sugared logger and scrubs applicant details from
// structured fields before they are written.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
	scrub         *policy
}

func New(mode string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	level := zap.DebugLevel
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		level = zap.InfoLevel
	case "test":
		level = zap.WarnLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: zl.Sugar(), scrub: policyFromEnv()}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar(), scrub: &policy{}}
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.SugaredLogger.Debugw(msg, l.scrub.apply(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.SugaredLogger.Infow(msg, l.scrub.apply(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.SugaredLogger.Warnw(msg, l.scrub.apply(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.SugaredLogger.Errorw(msg, l.scrub.apply(kv)...) }
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.SugaredLogger.Fatalw(msg, l.scrub.apply(kv)...) }

func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.scrub.apply(kv)...), scrub: l.scrub}
}

// Identity numbers and credentials are dropped outright. Contact details and
// names are replaced by a short salted digest so log lines stay correlatable.
var (
	dropMarkers   = []string{"password", "secret", "cookie", "authorization", "id_number", "national_id"}
	digestMarkers = []string{"email", "phone", "first_name", "last_name", "client_id"}
)

type policy struct {
	enabled bool
	salt    string
}

// LOG_REDACTION_ENABLED=false turns scrubbing off for local debugging.
func policyFromEnv() *policy {
	p := &policy{enabled: true, salt: strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LOG_REDACTION_ENABLED"))) {
	case "0", "false", "no", "off":
		p.enabled = false
	}
	return p
}

func (p *policy) apply(kv []interface{}) []interface{} {
	if p == nil || !p.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		out[i+1] = p.value(normalizeKey(out[i]), out[i+1])
	}
	return out
}

func (p *policy) value(key string, val interface{}) interface{} {
	switch {
	case key == "":
		return val
	case containsAny(key, dropMarkers):
		return "[REDACTED]"
	case containsAny(key, digestMarkers):
		return p.digest(val)
	}
	switch v := val.(type) {
	case map[string]interface{}:
		return p.mapValues(v)
	case map[string]string:
		m := make(map[string]interface{}, len(v))
		for k, s := range v {
			m[k] = s
		}
		return p.mapValues(m)
	}
	return val
}

func (p *policy) mapValues(in map[string]interface{}) map[string]interface{} {
	if in == nil {
		return nil
	}
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = p.value(normalizeKey(k), v)
	}
	return out
}

func (p *policy) digest(val interface{}) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(p.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func containsAny(key string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(key, m) {
			return true
		}
	}
	return false
}

func normalizeKey(k interface{}) string {
	return strings.ToLower(strings.TrimSpace(stringify(k)))
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
