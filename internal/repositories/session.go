package repositories

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WithSession opens a session, runs fn and closes the session on every exit
// path, panics included. A failed Close is logged and never replaces the error
// returned by fn.
func WithSession(ctx context.Context, connector Connector, logger *zap.Logger, fn func(s Session) error) error {
	session, err := connector.Connect(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warn("не удалось закрыть соединение с БД", zap.Error(closeErr))
		}
	}()

	return fn(session)
}

// withTimeout bounds ctx by d. A zero or negative d leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
