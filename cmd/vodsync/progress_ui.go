package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/John-Robertt/vodsync/internal/app/run"
	"github.com/John-Robertt/vodsync/internal/config"
	"github.com/John-Robertt/vodsync/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的进度输出。
//
// 设计目标：
// - 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约
// - 事件驱动：run 层只发事件，CLI 决定如何展示
// - 管线串行执行，事件按序到达，无需加锁
type progressUI struct {
	w io.Writer
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()

	mode := "sync"
	if eff.Force {
		mode = "sync (--force，缩略图强制重下)"
	}

	fmt.Fprintf(p.w, "[%s] vodsync run (%s)\n", now.Format("15:04:05"), mode)
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  channel: %s\n", eff.Channel)
	fmt.Fprintf(p.w, "  timezone: %s\n", eff.TimezoneName)
	fmt.Fprintf(p.w, "  window: %s\n", formatWindow(eff.After, eff.Before))

	fmt.Fprintln(p.w, "输出:")
	fmt.Fprintf(p.w, "  content: %s\n", eff.ContentDir)
	fmt.Fprintf(p.w, "  thumbs: %s\n", eff.AssetsDir)
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	switch name {
	case "auth":
		fmt.Fprintf(p.w, "认证: ok (%s)\n", formatShortDuration(dur))
	case "resolve":
		fmt.Fprintf(p.w, "频道: id=%s (%s)\n",
			stringField(fields, "channel_id"), formatShortDuration(dur),
		)
	case "list":
		fmt.Fprintf(p.w, "拉取: videos=%d (%s)\n\n",
			intField(fields, "videos"), formatShortDuration(dur),
		)
	case "filter":
		fmt.Fprintf(p.w, "过滤: kept=%d dropped=%d\n\n",
			intField(fields, "kept"), intField(fields, "dropped"),
		)
	default:
		// 兜底：未知阶段也不要静默（便于调试/演进）。
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
}

func (p *progressUI) OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration) {
	status := strings.ToUpper(res.Action)
	switch res.Action {
	case domain.ActionCreated:
		status = "NEW"
	case domain.ActionUpdated:
		status = "UPD"
	case domain.ActionUnchanged:
		status = "OK"
	case domain.ActionSkipped:
		status = "SKIP"
	}

	thumbNote := ""
	if res.ThumbDownloaded {
		thumbNote = " thumb=new"
	}

	if res.Action == domain.ActionSkipped {
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s: %s (%s)\n",
			idx, total, res.Date, status, res.ErrorCode, truncate(res.ErrorMsg, 160), formatShortDuration(dur),
		)
		return
	}
	fmt.Fprintf(p.w, "[%d/%d] %s %s %s%s (%s)\n",
		idx, total, res.Date, status, truncate(res.Title, 80), thumbNote, formatShortDuration(dur),
	)
}

func formatWindow(after, before string) string {
	switch {
	case after == "" && before == "":
		return "全部"
	case before == "":
		return "(" + after + ", …)"
	case after == "":
		return "(…, " + before + ")"
	default:
		return "(" + after + ", " + before + ")"
	}
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}

func stringField(fields map[string]any, key string) string {
	if fields == nil {
		return ""
	}
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}
