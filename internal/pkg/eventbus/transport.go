package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"ecommerce/internal/pkg/httpclient"
	"ecommerce/internal/pkg/mq"
)

// HeaderEventKind 让消费者无需解析消息体即可路由。
const HeaderEventKind = "event-kind"

// TopicTransport 把 Envelope 发布到 kafka 主题。
type TopicTransport struct {
	writer mq.Writer
	topic  string
}

func NewTopicTransport(writer mq.Writer, topic string) *TopicTransport {
	return &TopicTransport{writer: writer, topic: topic}
}

func (t *TopicTransport) Name() string { return "topic:" + t.topic }

func (t *TopicTransport) Send(ctx context.Context, key string, env Envelope) error {
	raw, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "marshal envelope")
	}
	header := kafka.Header{Key: HeaderEventKind, Value: []byte(env.EventKind)}
	if err := mq.ProduceMessage(ctx, t.writer, []byte(key), raw, header); err != nil {
		return errors.Wrapf(err, "publish to %s", t.topic)
	}
	return nil
}

// InvokeTransport 通过 HTTP 同步调用指定名字的事件函数。
type InvokeTransport struct {
	client   *httpclient.Client
	endpoint string
	function string
}

// NewInvokeTransport 构造调用 {baseURL}/functions/{function}/invocations 的传输。
func NewInvokeTransport(client *httpclient.Client, baseURL, function string) *InvokeTransport {
	endpoint := fmt.Sprintf("%s/functions/%s/invocations", strings.TrimRight(baseURL, "/"), url.PathEscape(function))
	return &InvokeTransport{client: client, endpoint: endpoint, function: function}
}

func (t *InvokeTransport) Name() string { return "invoke:" + t.function }

func (t *InvokeTransport) Send(ctx context.Context, _ string, env Envelope) error {
	return t.client.PostJSON(ctx, t.endpoint, env, nil)
}
