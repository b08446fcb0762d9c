package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Count 宽松的整数：接受 JSON 数字或数字字符串，其它一律视为 0。
// 表单提交的 units 经常是字符串（"2"），这里做数值强转而不是报错。
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = 0
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch val := v.(type) {
	case float64:
		*c = Count(truncate(val))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			*c = Count(truncate(f))
		}
	case bool:
		if val {
			*c = 1
		}
	}
	return nil
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// OrDefault returns def when c is not a positive count.
func (c Count) OrDefault(def int) Count {
	if c <= 0 {
		return Count(def)
	}
	return c
}
