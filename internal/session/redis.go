package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const redisKeyPrefix = "paysession:v1:"

// consumeScript performs the whole validate-and-consume step server-side so
// two concurrent confirmations cannot both observe the same live record.
// KEYS[1] = session key, ARGV[1] = token, ARGV[2] = now (ms), ARGV[3] = ttl (ms).
var consumeScript = redis.NewScript(`
local s = redis.call('HMGET', KEYS[1], 'wallet_id', 'amount', 'token', 'created_at')
if not s[1] then
  return {'not_found'}
end
if tonumber(ARGV[2]) - tonumber(s[4]) > tonumber(ARGV[3]) then
  redis.call('DEL', KEYS[1])
  return {'expired'}
end
if s[3] ~= ARGV[1] then
  return {'mismatch'}
end
redis.call('DEL', KEYS[1])
return {'ok', s[1], s[2]}
`)

// RedisStore keeps pending payments in Redis hashes, one per session. The key
// carries a TTL at twice the session TTL purely as a garbage-collection
// backstop; the authoritative expiry check compares created_at against the
// injected clock inside the Lua script.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore builds a Redis-backed store with the given TTL. A zero ttl
// falls back to DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// SetClock replaces the time source used for expiry checks.
func (s *RedisStore) SetClock(now func() time.Time) {
	s.now = now
}

// Create stores a fresh pending payment and returns its identifiers.
func (s *RedisStore) Create(ctx context.Context, walletID string, amount decimal.Decimal) (Created, error) {
	token, err := newToken()
	if err != nil {
		return Created{}, err
	}

	id := uuid.NewString()
	key := redisKeyPrefix + id

	if err := s.client.HSet(ctx, key,
		"wallet_id", walletID,
		"amount", amount.StringFixed(2),
		"token", token,
		"created_at", s.now().UnixMilli(),
	).Err(); err != nil {
		return Created{}, fmt.Errorf("store session: %w", err)
	}
	if err := s.client.Expire(ctx, key, 2*s.ttl).Err(); err != nil {
		return Created{}, fmt.Errorf("set session ttl: %w", err)
	}

	return Created{SessionID: id, Token: token}, nil
}

// ValidateAndConsume runs the consume script and maps its verdict onto the
// store's error taxonomy.
func (s *RedisStore) ValidateAndConsume(ctx context.Context, sessionID, token string) (Pending, error) {
	res, err := consumeScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + sessionID},
		token, s.now().UnixMilli(), s.ttl.Milliseconds(),
	).Slice()
	if err != nil {
		return Pending{}, fmt.Errorf("consume session: %w", err)
	}
	if len(res) == 0 {
		return Pending{}, fmt.Errorf("consume session: empty script reply")
	}

	verdict, _ := res[0].(string)
	switch verdict {
	case "ok":
		if len(res) < 3 {
			return Pending{}, fmt.Errorf("consume session: short script reply")
		}
		walletID, _ := res[1].(string)
		amountStr, _ := res[2].(string)
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return Pending{}, fmt.Errorf("parse session amount: %w", err)
		}
		return Pending{WalletID: walletID, Amount: amount}, nil
	case "expired":
		return Pending{}, ErrSessionExpired
	case "mismatch":
		return Pending{}, ErrTokenMismatch
	case "not_found":
		return Pending{}, ErrSessionNotFound
	default:
		return Pending{}, fmt.Errorf("consume session: unexpected verdict %q", verdict)
	}
}

// Delete removes the session if it still exists.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
