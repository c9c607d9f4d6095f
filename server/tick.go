package server

import (
	"context"
	"time"
)

// StartTicker 启动房间的 Tick 循环（单线程推进世界）。
// 每次 Tick 后按引擎给出的间隔重新定时，减速效果因此直接体现在节奏上。
// 房间里没有操控者或游戏结束时停表。
func (r *Room) StartTicker(ctx context.Context) {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	go func() {
		defer close(r.done)
		r.run(ctx)
	}()
}

func (r *Room) run(ctx context.Context) {
	timer := time.NewTimer(r.engine.Interval())
	timer.Stop()
	defer timer.Stop()
	for {
		if r.Pilot() == "" || r.engine.GameOver() {
			if !r.hold(ctx) {
				return
			}
			continue
		}
		// 已有操控者在场，丢掉过期的到达信号
		select {
		case <-r.arrive:
		default:
		}
		timer.Reset(r.engine.Interval())
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		r.Step()
	}
}

type wakeReason int

const (
	wakeCancelled wakeReason = iota
	wakeRestart
	wakePilot
)

// hold 没有操控者或本局已结束时停表。
// 新操控者进入空房间时从第 0 格开一局；操控者请求重开时执行一帧处理该请求。
func (r *Room) hold(ctx context.Context) bool {
	if r.engine.GameOver() {
		r.log.Infof("ticker parked: final score %d", r.result.Score)
	} else {
		r.log.Info("ticker idle: waiting for a pilot")
	}
	switch r.park(ctx) {
	case wakeCancelled:
		return false
	case wakePilot:
		if r.engine.GameOver() || r.engine.Last().Tick > 0 {
			r.startFresh()
		}
	case wakeRestart:
		if r.engine.GameOver() && r.Pilot() != "" {
			r.Step()
		}
	}
	return true
}

// park 等待唤醒；等待期间仍处理离开请求以便操控者交接
func (r *Room) park(ctx context.Context) wakeReason {
	for {
		select {
		case <-ctx.Done():
			return wakeCancelled
		case req := <-r.leaveChan:
			r.detach(req)
		case <-r.wake:
			return wakeRestart
		case <-r.arrive:
			return wakePilot
		}
	}
}

// startFresh 重开一局并立即广播第 0 格，不消费排队中的输入
func (r *Room) startFresh() {
	r.BeginTick()
	r.restart = true
	r.UpdateWorld()
	r.Broadcast()
}
