// internal/shared/money.go
package shared

import (
	"sync"

	"github.com/shopspring/decimal"
)

var numericOnce sync.Once

// UseNumericDecimalJSON 让价格在 JSON 中以数字而非字符串输出。
// 进程启动时调用一次，必须早于任何请求和事件的序列化。
func UseNumericDecimalJSON() {
	numericOnce.Do(func() {
		decimal.MarshalJSONWithoutQuotes = true
	})
}
