package localdate

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration 把 Helix 的紧凑时长编码转为时钟格式。
//
// 规则：
// - 有小时："H:MM:SS"（小时不补零，分/秒固定两位）
// - 无小时："M:SS"（分不补零）
// - 缺失的分量按 0 处理；全空输入输出 "0:00"
//
// 例如 "1h1m29s" → "1:01:29"，"45m10s" → "45:10"，"30s" → "0:30"。
func FormatDuration(compact string) (string, error) {
	s := strings.TrimSpace(compact)
	if s == "" {
		return "0:00", nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return "", fmt.Errorf("无法解析时长 %q：%w", compact, err)
	}
	if d < 0 {
		return "", fmt.Errorf("时长不能为负：%q", compact)
	}

	total := int(d / time.Second)
	h := total / 3600
	m := total % 3600 / 60
	sec := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec), nil
	}
	return fmt.Sprintf("%d:%02d", m, sec), nil
}
