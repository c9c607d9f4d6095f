package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	InputsAccepted    int64 // 被接受的输入数
	InputsIgnored     int64 // 观战者或已离开玩家的输入
	InputsInvalid     int64 // 无法解析或方向非法的输入
	ChanFullDiscarded int64 // 因通道满被丢弃的输入数
	FoodEaten         int64
	GamesOver         int64
	Restarts          int64
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncAccepted() { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *RoomMetrics) IncIgnored() { atomic.AddInt64(&m.InputsIgnored, 1) }
func (m *RoomMetrics) IncInvalid() { atomic.AddInt64(&m.InputsInvalid, 1) }
func (m *RoomMetrics) IncChanFullDiscarded() { atomic.AddInt64(&m.ChanFullDiscarded, 1) }
func (m *RoomMetrics) IncFoodEaten() { atomic.AddInt64(&m.FoodEaten, 1) }
func (m *RoomMetrics) IncGamesOver() { atomic.AddInt64(&m.GamesOver, 1) }
func (m *RoomMetrics) IncRestarts() { atomic.AddInt64(&m.Restarts, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":          tick,
		"inputs_accepted":     atomic.LoadInt64(&m.InputsAccepted),
		"inputs_ignored":      atomic.LoadInt64(&m.InputsIgnored),
		"inputs_invalid":      atomic.LoadInt64(&m.InputsInvalid),
		"chan_full_discarded": atomic.LoadInt64(&m.ChanFullDiscarded),
		"food_eaten":          atomic.LoadInt64(&m.FoodEaten),
		"games_over":          atomic.LoadInt64(&m.GamesOver),
		"restarts":            atomic.LoadInt64(&m.Restarts),
		"avg_tick_ms":         avgMs,
	}
}
