// internal/pkg/eventbus/envelope.go
package eventbus

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Envelope 是所有事件在传输层的统一外壳，payload 为领域事件的 JSON 文本，传输层不解析它。
type Envelope struct {
	EventKind string `json:"eventKind"`
	Payload   string `json:"payload"`
}

// NewEnvelope 序列化领域事件并包装成 Envelope。
func NewEnvelope(kind string, event any) (Envelope, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, errors.Wrapf(err, "marshal %s payload", kind)
	}
	return Envelope{EventKind: kind, Payload: string(raw)}, nil
}

// Decode 把 payload 解析到 v。
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal([]byte(e.Payload), v); err != nil {
		return errors.Wrapf(err, "decode %s payload", e.EventKind)
	}
	return nil
}

// DecodeEnvelope 解析消息体中的 Envelope。
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, errors.Wrap(err, "decode envelope")
	}
	if env.EventKind == "" {
		return Envelope{}, errors.New("envelope without eventKind")
	}
	return env, nil
}
