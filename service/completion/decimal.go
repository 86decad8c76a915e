package completion

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cast"
)

// parseDecimal 解析存储返回的数值，NULL 返回 ok=false
// 不同驱动分别以 float64、string、[]byte 或 Stringer 返回 numeric
func parseDecimal(v interface{}) (*apd.Decimal, bool, error) {
	v = normalizeValue(v)
	if v == nil {
		return nil, false, nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, false, fmt.Errorf("数值类型无法识别 %T: %w", v, err)
	}
	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		return nil, false, fmt.Errorf("数值格式错误 %q: %w", s, err)
	}
	return &d, true, nil
}

func quantizeHalfUp(d *apd.Decimal, places int32) (*apd.Decimal, error) {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	var out apd.Decimal
	if _, err := ctx.Quantize(&out, d, -places); err != nil {
		return nil, err
	}
	return &out, nil
}

// roundAverage 平均分保留两位小数
func roundAverage(d *apd.Decimal) (float64, error) {
	q, err := quantizeHalfUp(d, 2)
	if err != nil {
		return 0, err
	}
	return q.Float64()
}

// roundScore 分数四舍五入（half-up）为整数
func roundScore(d *apd.Decimal) (int, error) {
	q, err := quantizeHalfUp(d, 0)
	if err != nil {
		return 0, err
	}
	n, err := q.Int64()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
