package meta

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the meta package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the meta package's logger.
// This must be called before any registry is created.
func SetLogger(l *zap.Logger) {
	logger = l
}

func zapType(t *Type) zap.Field {
	return zap.String("type", t.name)
}

func zapMember(name string) zap.Field {
	return zap.String("member", name)
}
