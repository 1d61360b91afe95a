package app

import (
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/enrollment-backend/internal/data/db"
	"github.com/yungbote/enrollment-backend/internal/data/kvstore"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

const (
	StoreDriverMemory   = "memory"
	StoreDriverSQLite   = db.DriverSQLite
	StoreDriverPostgres = db.DriverPostgres
	StoreDriverRedis    = "redis"
)

type StoreBootstrapErrorCode string

const (
	StoreBootstrapErrorInvalidDriver    StoreBootstrapErrorCode = "invalid_driver"
	StoreBootstrapErrorMissingRedisAddr StoreBootstrapErrorCode = "missing_redis_addr"
	StoreBootstrapErrorConnectFailed    StoreBootstrapErrorCode = "connect_failed"
	StoreBootstrapErrorMigrateFailed    StoreBootstrapErrorCode = "migrate_failed"
)

type StoreBootstrapError struct {
	Code   StoreBootstrapErrorCode
	Driver string
	Cause  error
}

func (e *StoreBootstrapError) Error() string {
	if e == nil {
		return "preference store bootstrap failed"
	}
	return fmt.Sprintf("preference store bootstrap failed (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *StoreBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveStore opens the preference store named by cfg.StoreDriver. The
// returned close func releases the SQL connection when there is one.
func resolveStore(log *logger.Logger, cfg Config, rdb *goredis.Client) (kvstore.Store, func() error, error) {
	noop := func() error { return nil }
	log.Info("Selecting preference store", "driver", cfg.StoreDriver)

	switch cfg.StoreDriver {
	case StoreDriverMemory:
		log.Warn("Preferences are kept in memory and lost on restart")
		return kvstore.NewMemory(), noop, nil

	case StoreDriverSQLite, StoreDriverPostgres:
		dbCfg := cfg.DB
		dbCfg.Driver = cfg.StoreDriver
		svc, err := db.Open(dbCfg, log)
		if err != nil {
			return nil, nil, bootstrapFailure(log, cfg.StoreDriver, StoreBootstrapErrorConnectFailed, err)
		}
		store, err := kvstore.NewGormStore(svc.DB(), log)
		if err != nil {
			_ = svc.Close()
			return nil, nil, bootstrapFailure(log, cfg.StoreDriver, StoreBootstrapErrorMigrateFailed, err)
		}
		return store, svc.Close, nil

	case StoreDriverRedis:
		if rdb == nil {
			return nil, nil, bootstrapFailure(log, cfg.StoreDriver, StoreBootstrapErrorMissingRedisAddr, errors.New("REDIS_ADDR is required for the redis store"))
		}
		store, err := kvstore.NewRedisStore(log, rdb, cfg.RedisKVPrefix)
		if err != nil {
			return nil, nil, bootstrapFailure(log, cfg.StoreDriver, StoreBootstrapErrorConnectFailed, err)
		}
		return store, noop, nil
	}

	return nil, nil, bootstrapFailure(log, cfg.StoreDriver, StoreBootstrapErrorInvalidDriver, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver))
}

func bootstrapFailure(log *logger.Logger, driver string, code StoreBootstrapErrorCode, cause error) error {
	err := &StoreBootstrapError{Code: code, Driver: driver, Cause: cause}
	log.Error("Preference store bootstrap failed", "driver", driver, "error_code", code, "error", cause)
	return err
}
