package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/learnhub/backend/internal/logger"
	"github.com/learnhub/backend/internal/storage"
	"github.com/lib/pq"
)

const notifyChannel = "slot_changes"

// SlotStore keeps slots in the slots table and announces writes with
// pg_notify so every server sharing the database sees them.
type SlotStore struct {
	db  *DB
	log *logger.Logger
}

func NewSlotStore(db *DB, log *logger.Logger) *SlotStore {
	return &SlotStore{db: db, log: log.With("service", "PostgresSlotStore")}
}

func (s *SlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM slots WHERE slot_key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get slot %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SlotStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO slots (slot_key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot_key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set slot %s: %w", key, err)
	}

	s.notify(ctx, storage.Change{Key: key, Value: value})
	return nil
}

func (s *SlotStore) Remove(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE slot_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to remove slot %s: %w", key, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		s.notify(ctx, storage.Change{Key: key, Removed: true})
	}
	return nil
}

// notify sends the key only; NOTIFY payloads are capped at 8000 bytes and the
// encrypted course list easily exceeds that. Receivers re-read the slot.
func (s *SlotStore) notify(ctx context.Context, c storage.Change) {
	c.Value = ""
	data, err := json.Marshal(c)
	if err != nil {
		return
	}
	if _, err := s.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(data)); err != nil {
		s.log.Warn("failed to notify slot change", "key", c.Key, "error", err)
	}
}

// Watch listens for slot changes through a dedicated pq.Listener connection.
// Changes arrive without values.
func (s *SlotStore) Watch(ctx context.Context) (<-chan storage.Change, error) {
	listener := pq.NewListener(s.db.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			s.log.Warn("slot listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen for slot changes: %w", err)
	}

	out := make(chan storage.Change, 64)
	go func() {
		defer close(out)
		defer listener.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case n := <-listener.Notify:
				if n == nil {
					// reconnected; notifications may have been lost
					continue
				}
				var c storage.Change
				if err := json.Unmarshal([]byte(n.Extra), &c); err != nil {
					s.log.Warn("bad slot change payload", "error", err)
					continue
				}
				select {
				case out <- c:
				default:
				}
			}
		}
	}()

	return out, nil
}
