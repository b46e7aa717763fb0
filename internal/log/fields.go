package log

import (
	"time"

	"go.uber.org/zap"
)

// Field helpers re-exported so call sites only import this package.

type Field = zap.Field

func String(key, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Int64(key string, value int64) zap.Field {
	return zap.Int64(key, value)
}

func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

func Any(key string, value any) zap.Field {
	return zap.Any(key, value)
}

func Strings(key string, values []string) zap.Field {
	return zap.Strings(key, values)
}

func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

// Cause attaches the error that caused the entry.
func Cause(err error) zap.Field {
	return zap.Error(err)
}
