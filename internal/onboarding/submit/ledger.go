// internal/onboarding/submit/ledger.go
package submit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLedger records completed submission resources in Redis so a retried
// submission skips what an earlier attempt already persisted. Entries expire
// on their own; a fully successful submission clears them eagerly.
type RedisLedger struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisLedger creates a ledger with the given entry TTL.
func NewRedisLedger(client redis.UniversalClient, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

func ledgerKey(applicantID string) string {
	return fmt.Sprintf("onboarding:submission:%s", applicantID)
}

// Done reports whether the resource was persisted by an earlier attempt.
func (l *RedisLedger) Done(ctx context.Context, applicantID, resource string) (bool, error) {
	return l.client.SIsMember(ctx, ledgerKey(applicantID), resource).Result()
}

// Mark records the resource as persisted and refreshes the entry TTL.
func (l *RedisLedger) Mark(ctx context.Context, applicantID, resource string) error {
	key := ledgerKey(applicantID)
	if err := l.client.SAdd(ctx, key, resource).Err(); err != nil {
		return err
	}
	return l.client.Expire(ctx, key, l.ttl).Err()
}

// Clear drops the applicant's ledger after a fully successful submission.
func (l *RedisLedger) Clear(ctx context.Context, applicantID string) error {
	return l.client.Del(ctx, ledgerKey(applicantID)).Err()
}
