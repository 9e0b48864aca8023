package report

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ledger marks sessions as reported across gateway replicas. The in-process
// callbackSent flag already guarantees at-most-once dispatch per process;
// the ledger extends that to deployments where the same session id could
// reach more than one replica.
//
// The guarantee stays "attempted-once, not delivered-once": the marker is
// claimed before dispatch and never rolled back on delivery failure.
type Ledger struct {
	client *redis.Client
	ttl    time.Duration
}

// defaultLedgerTTL keeps markers long past any realistic conversation.
const defaultLedgerTTL = 7 * 24 * time.Hour

// NewLedger connects to a Redis instance at addr.
func NewLedger(ctx context.Context, addr string) (*Ledger, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping report ledger: %w", err)
	}
	return &Ledger{client: client, ttl: defaultLedgerTTL}, nil
}

func ledgerKey(sessionID string) string {
	return "baitline:reported:" + sessionID
}

// FirstReport atomically claims the reported marker for sessionID. It
// returns true exactly once per session id; every later call, from any
// replica, returns false.
func (l *Ledger) FirstReport(ctx context.Context, sessionID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, ledgerKey(sessionID), time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim report marker: %w", err)
	}
	return ok, nil
}

// Close releases the Redis connection.
func (l *Ledger) Close() error { return l.client.Close() }
