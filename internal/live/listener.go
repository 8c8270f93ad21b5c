package live

import (
	"context"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"mythoughts/internal/thought"
)

// Listen forwards Postgres notifications on thought.NotifyChannel to
// hub until ctx ends. A reconnect also triggers a broadcast since
// notifications may have been missed.
func Listen(ctx context.Context, dsn string, hub *Hub, log *zap.Logger) error {
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("pg listener", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	defer l.Close()

	if err := l.Listen(thought.NotifyChannel); err != nil {
		return err
	}
	log.Info("listening for thought changes", zap.String("channel", thought.NotifyChannel))

	ticker := time.NewTicker(90 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.Notify:
			hub.Changed()
		case <-ticker.C:
			go func() {
				if err := l.Ping(); err != nil {
					log.Warn("pg listener ping", zap.Error(err))
				}
			}()
		}
	}
}
