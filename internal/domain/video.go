package domain

import "time"

// RemoteVideo 是 Helix /videos 返回的单条 VOD 记录（外部只读输入）。
//
// 不变量（实现必须遵守）：
// - CreatedAt 是 UTC 时刻（API 返回 RFC3339，后缀 Z）
// - API 保证按时间降序返回（新 → 旧），分页短路依赖该顺序
type RemoteVideo struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	Duration     string // 紧凑编码，例如 "1h1m29s"
	ViewCount    int
	ThumbnailURL string // 含 %{width}x%{height} 占位符；进行中/刚结束的 VOD 可能为空
	URL          string
}

// Episode 是管线内部的归一化记录（每条 VOD 每次 run 一条，临时态）。
//
// 约束：
// - Date 由 CreatedAt + 目标时区唯一确定（civil date），是本地身份键：
//   内容文件与缩略图的文件名都只由它派生
// - ThumbPath/ThumbRef 在缩略图环节完成后回填，其余字段由 Transform 一次算出
type Episode struct {
	VideoID      string
	Title        string
	URL          string
	ThumbnailURL string // 已替换分辨率占位符的下载地址
	Duration     string // 时钟格式，例如 "1:01:29"
	ViewCount    int

	Date     string // "2026-01-26"（目标时区日历日）
	DateTime string // "2026-01-26T17:00:00-05:00"（带显式偏移）

	ThumbPath string // 本地缩略图文件路径（下载/命中后回填）
	ThumbRef  string // 写入内容文件的站内引用，例如 "/assets/thumbs/2026-01-26.jpg"
}
