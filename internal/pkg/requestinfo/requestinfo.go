// internal/pkg/requestinfo/requestinfo.go
package requestinfo

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderRequestID 是网关透传的请求 ID 头。
const HeaderRequestID = "X-Request-Id"

type ctxKey struct{}

// Info 是每个请求的标识信息，会写入日志并随事件一起投递。
type Info struct {
	Method       string
	APIRequestID string
	InvocationID string
}

// FromContext 取出请求信息；不在请求链路中时返回零值。
func FromContext(ctx context.Context) Info {
	if info, ok := ctx.Value(ctxKey{}).(Info); ok {
		return info
	}
	return Info{}
}

func NewContext(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// Middleware 为请求分配 ID，把带有请求字段的 logger 放进 context，并记录请求行。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := Info{
			Method:       c.Request.Method,
			APIRequestID: c.GetHeader(HeaderRequestID),
			InvocationID: uuid.NewString(),
		}
		if info.APIRequestID == "" {
			info.APIRequestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, info.APIRequestID)

		l := zerolog.Ctx(c.Request.Context()).With().
			Str("method", info.Method).
			Str("api_request_id", info.APIRequestID).
			Str("invocation_id", info.InvocationID).
			Logger()

		ctx := NewContext(c.Request.Context(), info)
		ctx = l.WithContext(ctx)
		c.Request = c.Request.WithContext(ctx)

		l.Info().Str("path", c.FullPath()).Msg("request received")
		c.Next()
	}
}
