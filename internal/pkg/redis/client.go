// internal/pkg/redis/client.go
package redis

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"ecommerce/internal/pkg/logger"
)

// NewClient 创建 redis 客户端；单地址为普通连接，多地址为集群。
func NewClient(ctx context.Context, addrs []string) (goredis.UniversalClient, error) {
	if len(addrs) == 0 {
		return nil, errors.New("redis: no address configured")
	}
	client := goredis.NewUniversalClient(&goredis.UniversalOptions{Addrs: addrs})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "redis: ping %s", strings.Join(addrs, ","))
	}
	logger.Ctx(ctx).Info().Strs("addrs", addrs).Msg("✅ Redis connected")
	return client, nil
}
