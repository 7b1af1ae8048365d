package run

import (
	"time"

	"github.com/John-Robertt/vodsync/internal/config"
	"github.com/John-Robertt/vodsync/internal/domain"
)

// Observer 用于把「运行进度/阶段/条目结果」从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）
// - 事件按执行顺序串行发出（管线是单线程顺序执行的，实现无需加锁）
type Observer interface {
	// OnStart 在 Execute 开始时调用（尽量早，保证用户第一时间看到生效配置）。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用（auth / resolve / list / filter）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在单条记录处理完成时调用（每条一行输出）。
	OnItemDone(idx, total int, res domain.ItemResult, dur time.Duration)
}
