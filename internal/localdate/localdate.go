package localdate

import (
	"fmt"
	"strings"
	"time"
)

// Load 解析 IANA 时区名（例如 "America/New_York"）。
//
// 约束：必须依赖时区数据库做逐时刻的墙钟投影；任何固定偏移
// 兜底（例如写死 EST/EDT）都是错误而不是降级。
func Load(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("时区不能为空")
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("无法加载时区 %q：%w", name, err)
	}
	return loc, nil
}

// CivilDate 把 UTC 时刻投影为目标时区的日历日（"YYYY-MM-DD"）。
//
// 不变量：时刻单调递增时输出单调不减（投影不会重排顺序）。
func CivilDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// OffsetDateTime 输出目标时区的完整本地时间，带显式数字偏移
// （例如 "2026-01-26T17:00:00-05:00"）。
//
// 偏移取该时刻实际生效的标准/夏令规则（逐时刻，不是固定值）：
// time.Time.In 即 IANA 感知的墙钟投影，-07:00 布局直接给出
// 正确的 ±HH:MM。小时段恒为 00..23，不存在 "24" 回卷。
func OffsetDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02T15:04:05-07:00")
}

// ParseCivil 严格校验 "YYYY-MM-DD" 并返回规范形式；不做模糊解析。
func ParseCivil(s string) (string, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("日期必须是 YYYY-MM-DD 格式：%q", s)
	}
	return t.Format("2006-01-02"), nil
}
