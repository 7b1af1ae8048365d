package domain

import (
	"sort"
	"time"
)

const (
	// ActionCreated 表示本次 run 新建了该日期的内容文件。
	ActionCreated = "created"
	// ActionUpdated 表示合并后文件内容发生变化并已重写。
	ActionUpdated = "updated"
	// ActionUnchanged 表示合并后与原文件字节一致，未写盘。
	ActionUnchanged = "unchanged"
	// ActionSkipped 表示该文件属性块定位失败，本条被跳过（唯一可局部恢复的错误类）。
	ActionSkipped = "skipped"
)

const (
	ErrCodeConfigNotFound  = "config_not_found"
	ErrCodeConfigInvalid   = "config_invalid"
	ErrCodeAuthFailed      = "auth_failed"
	ErrCodeChannelNotFound = "channel_not_found"
	ErrCodeFetchFailed     = "fetch_failed"
	ErrCodeDownloadFailed  = "download_failed"
	ErrCodeParseFailed     = "parse_failed"
	ErrCodeIOFailed        = "io_failed"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
//
// 约定：stdout 非 TTY 时必须且仅输出一个 RunReport JSON；
// 过程信息（进度/告警/摘要）全部走 stderr。
type RunReport struct {
	Channel string `json:"channel"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Fetched    int `json:"fetched"`
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Skipped    int `json:"skipped"`
	Thumbnails int `json:"thumbnails"` // 实际发生下载的缩略图数（命中已有文件不计）
}

type ItemResult struct {
	Date    string `json:"date"`
	VideoID string `json:"video_id"`
	Title   string `json:"title"`

	Action          string `json:"action"`
	ThumbDownloaded bool   `json:"thumb_downloaded"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 civil date 升序，同日按 video_id
// 3) summary 的 created/updated/unchanged/skipped/thumbnails 由 items 计算得出
//    （Fetched 由驱动层在拉取阶段写入，不在此重算）
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		if r.Items[i].Date != r.Items[j].Date {
			return r.Items[i].Date < r.Items[j].Date
		}
		return r.Items[i].VideoID < r.Items[j].VideoID
	})

	fetched := r.Summary.Fetched
	var s ReportSummary
	s.Fetched = fetched
	for _, it := range r.Items {
		switch it.Action {
		case ActionCreated:
			s.Created++
		case ActionUpdated:
			s.Updated++
		case ActionUnchanged:
			s.Unchanged++
		case ActionSkipped:
			s.Skipped++
		}
		if it.ThumbDownloaded {
			s.Thumbnails++
		}
	}
	r.Summary = s
}
