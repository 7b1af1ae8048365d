package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/John-Robertt/vodsync/internal/config"
	"github.com/John-Robertt/vodsync/internal/domain"
	"github.com/John-Robertt/vodsync/internal/episode"
	"github.com/John-Robertt/vodsync/internal/localdate"
	"github.com/John-Robertt/vodsync/internal/thumbs"
	"github.com/John-Robertt/vodsync/internal/twitch"
)

// Error 标注致命错误的稳定 error_code（cmd 的输出与退出码依赖它）。
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s：%v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Execute 串行执行一次同步：认证 → 解析频道 → 拉取 VOD →（可选 before 过滤）→
// 逐条「缩略图 → 内容文件」，最后产出 RunReport。
//
// 错误策略（固定）：
// - 属性块定位失败是唯一局部恢复的错误类：记为 skipped 条目，继续其余记录
// - 其余任何失败都中断整个 run；此前已写入的文件保留——每一步写入都是幂等的，
//   重跑会原地收敛，不会产生重复记录或半截文件
//
// 返回的 RunReport 在出错时也包含中断前已完成的条目。
func Execute(ctx context.Context, eff config.EffectiveConfig, tc *twitch.Client, imageClient *http.Client, obs Observer) (domain.RunReport, error) {
	started := time.Now().UTC()
	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Channel:   eff.Channel,
		StartedAt: started,
		Items:     []domain.ItemResult{},
	}
	finish := func() {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
	}

	t0 := time.Now()
	token, err := tc.Authenticate(ctx, eff.ClientID, eff.ClientSecret)
	if err != nil {
		finish()
		return rr, &Error{Code: domain.ErrCodeAuthFailed, Err: err}
	}
	phase(obs, "auth", nil, time.Since(t0))

	t0 = time.Now()
	channelID, err := tc.ResolveChannelID(ctx, eff.Channel, token)
	if err != nil {
		finish()
		code := domain.ErrCodeFetchFailed
		var nf *twitch.NotFoundError
		if errors.As(err, &nf) {
			code = domain.ErrCodeChannelNotFound
		}
		return rr, &Error{Code: code, Err: err}
	}
	phase(obs, "resolve", map[string]any{"channel_id": channelID}, time.Since(t0))

	t0 = time.Now()
	videos, err := tc.ListVideos(ctx, channelID, token, twitch.ListOptions{
		AfterDate: eff.After,
		Location:  eff.Location,
	})
	if err != nil {
		finish()
		return rr, &Error{Code: domain.ErrCodeFetchFailed, Err: err}
	}
	rr.Summary.Fetched = len(videos)
	phase(obs, "list", map[string]any{"videos": len(videos)}, time.Since(t0))

	// before 过滤（独占上界）：API 不支持服务端上界，只能客户端过滤。
	// 被过滤掉的记录零下游成本（不下载、不读写文件）。
	work := videos
	if eff.Before != "" {
		work = work[:0:0]
		for _, v := range videos {
			if localdate.CivilDate(v.CreatedAt, eff.Location) < eff.Before {
				work = append(work, v)
			}
		}
		phase(obs, "filter", map[string]any{
			"kept":    len(work),
			"dropped": len(videos) - len(work),
		}, 0)
	}

	for i, v := range work {
		oneStarted := time.Now()

		ep, err := episode.Transform(v, eff.Location)
		if err != nil {
			finish()
			return rr, &Error{Code: domain.ErrCodeFetchFailed, Err: err}
		}

		downloaded, err := thumbs.Ensure(ctx, imageClient, &ep, eff.AssetsDir, eff.Force)
		if err != nil {
			finish()
			return rr, &Error{Code: domain.ErrCodeDownloadFailed, Err: err}
		}
		ep.ThumbRef = eff.ThumbnailPrefix + "/" + filepath.Base(ep.ThumbPath)

		item := domain.ItemResult{
			Date:            ep.Date,
			VideoID:         ep.VideoID,
			Title:           ep.Title,
			ThumbDownloaded: downloaded,
		}

		action, err := episode.Sync(eff.ContentDir, ep)
		switch {
		case err == nil:
			item.Action = action
		case errors.Is(err, episode.ErrNoFrontMatter):
			// 跳过但绝不静默：条目带 error_code 进入 report，由观察者告警。
			item.Action = domain.ActionSkipped
			item.ErrorCode = domain.ErrCodeParseFailed
			item.ErrorMsg = err.Error()
		default:
			finish()
			return rr, &Error{Code: domain.ErrCodeIOFailed, Err: err}
		}

		rr.Items = append(rr.Items, item)
		if obs != nil {
			obs.OnItemDone(i+1, len(work), item, time.Since(oneStarted))
		}
	}

	finish()
	return rr, nil
}

func phase(obs Observer, name string, fields map[string]any, dur time.Duration) {
	if obs != nil {
		obs.OnPhaseDone(name, fields, dur)
	}
}
