// internal/service/audit/infrastructure/redis_store.go
package infrastructure

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"ecommerce/internal/pkg/metrics"
	"ecommerce/internal/service/audit/domain"
)

// minExpiry 防止接近过期的记录以 0 过期时间写入成永久 key
const minExpiry = time.Second

// RedisStore 把审计记录存为 <table>:<pk>:<sk> 的 JSON 字符串，依赖 key 过期清理
type RedisStore struct {
	client goredis.UniversalClient
	table  string
	now    func() time.Time
}

func NewRedisStore(client goredis.UniversalClient, table string) *RedisStore {
	return &RedisStore{client: client, table: table, now: time.Now}
}

func (s *RedisStore) key(pk, sk string) string {
	return s.table + ":" + pk + ":" + sk
}

func (s *RedisStore) Put(ctx context.Context, r domain.Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "marshal audit record")
	}

	expiry := r.ExpiresAt().Sub(s.now())
	if expiry < minExpiry {
		expiry = minExpiry
	}
	if err := s.client.Set(ctx, s.key(r.PartitionKey, r.SortKey), raw, expiry).Err(); err != nil {
		return errors.Wrapf(err, "put audit record %s/%s", r.PartitionKey, r.SortKey)
	}
	metrics.AuditRecordsWritten.WithLabelValues(r.EventKind).Inc()
	return nil
}

func (s *RedisStore) Get(ctx context.Context, pk, sk string) (*domain.Record, error) {
	raw, err := s.client.Get(ctx, s.key(pk, sk)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, errors.Wrap(err, "get audit record")
	}
	var r domain.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, errors.Wrap(err, "decode audit record")
	}
	return &r, nil
}

// ListByPartition 按 sk 升序返回一个分区下未过期的记录
func (s *RedisStore) ListByPartition(ctx context.Context, pk string) ([]domain.Record, error) {
	pattern := s.key(escapeGlob(pk), "*")

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scan audit records")
	}
	sort.Strings(keys)

	records := make([]domain.Record, 0, len(keys))
	for _, k := range keys {
		raw, err := s.client.Get(ctx, k).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue // 扫描之后过期
		}
		if err != nil {
			return nil, errors.Wrap(err, "get audit record")
		}
		var r domain.Record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, errors.Wrapf(err, "decode audit record %s", k)
		}
		records = append(records, r)
	}
	return records, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
