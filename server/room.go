package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"snakearena/game"
)

// Room 一个房间运行一局单人贪吃蛇：第一个加入的玩家操控，其余观战。
// 引擎只在 Tick 协程中访问；玩家表与配置由 mu 保护。
type Room struct {
	ID string

	mu      sync.Mutex
	players map[PlayerID]*Player
	order   []PlayerID // 加入顺序，操控者离开后按顺序接替
	cfg     game.Config
	frames  frames // 最近一次广播的状态帧，新连接加入时先补发

	inputChan  chan Input
	leaveChan  chan leaveRequest
	configChan chan game.Config
	wake       chan struct{} // 操控者请求重开
	arrive     chan struct{} // 空房间来了新的操控者

	engine  *game.Engine
	log     *zap.SugaredLogger
	metrics *RoomMetrics
	tickSeq atomic.Uint64

	// 帧内状态，由 BeginTick 重置
	pendingDir game.Direction
	restart    bool
	result     game.TickResult

	tickerStarted bool
	cancel        context.CancelFunc
	done          chan struct{}
}

// leaveRequest 连接断开时的移除请求；conn 用于区分同名重连后的旧连接
type leaveRequest struct {
	id   PlayerID
	conn *ClientConn
}

// stateMessage 广播给客户端的状态
type stateMessage struct {
	Type string `json:"type" msgpack:"type"`
	Room string `json:"room" msgpack:"room"`
	game.TickResult
}

// NewRoom 创建房间并摆好第一局，等操控者加入后才开始推进
func NewRoom(id string, cfg game.Config, log *zap.SugaredLogger, opts ...game.Option) (*Room, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.With("room", id)
	opts = append([]game.Option{game.WithLogger(log)}, opts...)
	eng, err := game.NewEngine(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	r := &Room{
		ID:         id,
		players:    make(map[PlayerID]*Player),
		cfg:        cfg,
		inputChan:  make(chan Input, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan:  make(chan leaveRequest, 64),
		configChan: make(chan game.Config, 8),
		wake:       make(chan struct{}, 1),
		arrive:     make(chan struct{}, 1),
		engine:     eng,
		log:        log,
		metrics:    &RoomMetrics{},
		result:     eng.Last(),
	}
	// 先编好第 0 格的状态帧，第一个加入的玩家立即能看到开局画面
	r.Broadcast()
	return r, nil
}

// JoinPlayer 将玩家加入房间，返回分配的身份
func (r *Room) JoinPlayer(id PlayerID, conn *ClientConn) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.players[id]; ok {
		// 同名重连：替换旧连接，保留身份
		if old.Conn != nil {
			old.Conn.Close()
		}
		old.Conn = conn
		r.greet(old)
		return old
	}
	role := RoleSpectator
	if r.pilotLocked() == "" {
		role = RolePilot
	}
	p := &Player{ID: id, Role: role, Conn: conn}
	r.players[id] = p
	r.order = append(r.order, id)
	r.greet(p)
	r.log.Infof("player %s joined as %s", id, role)
	if role == RolePilot {
		notify(r.arrive)
	}
	return p
}

// greet 发送身份与最近一帧状态，需持有 mu
func (r *Room) greet(p *Player) {
	if p.Conn == nil {
		return
	}
	msg := welcomeMessage{Type: "welcome", Room: r.ID, Role: p.Role, Cols: r.cfg.GridWidth(), Rows: r.cfg.GridHeight()}
	if b, err := p.Conn.codec.Marshal(msg); err == nil {
		p.Conn.Enqueue(b)
	}
	if b := r.frames[p.Conn.codec]; b != nil {
		p.Conn.Enqueue(b)
	}
}

// LeavePlayer 将玩家移出房间；操控者离开时由最早加入的观战者接替
func (r *Room) LeavePlayer(id PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(id)
}

// detach 处理断线请求，连接已被同名重连替换时忽略
func (r *Room) detach(req leaveRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[req.id]; ok && req.conn != nil && p.Conn != req.conn {
		return
	}
	r.leaveLocked(req.id)
}

func (r *Room) leaveLocked(id PlayerID) {
	p, ok := r.players[id]
	if !ok {
		return
	}
	if p.Conn != nil {
		p.Conn.Close()
	}
	delete(r.players, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.log.Infof("player %s left", id)
	if p.Role == RolePilot && len(r.order) > 0 {
		next := r.players[r.order[0]]
		next.Role = RolePilot
		r.greet(next)
		r.log.Infof("player %s is now pilot", next.ID)
	}
}

// Pilot 当前操控者，没有时为空
func (r *Room) Pilot() PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pilotLocked()
}

func (r *Room) pilotLocked() PlayerID {
	for _, pid := range r.order {
		if r.players[pid].Role == RolePilot {
			return pid
		}
	}
	return ""
}

// PlayerCount 当前连接数
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// OnInput 入站输入（不立即改变状态），仅记录意图，等下一次 Tick 处理
func (r *Room) OnInput(in Input) {
	select {
	case r.inputChan <- in:
	default:
		// 丢弃：为了实时性，避免背压影响世界推进
		r.metrics.IncChanFullDiscarded()
	}
	if in.Restart && in.PlayerID == r.Pilot() {
		// 唤醒因游戏结束而停表的 Tick 协程
		notify(r.wake)
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// RequestLeave 请求在 Tick 线程中移除玩家
func (r *Room) RequestLeave(pid PlayerID, conn *ClientConn) {
	req := leaveRequest{id: pid, conn: conn}
	select {
	case r.leaveChan <- req:
	default:
		// 通道满时直接移除，玩家表本身有锁保护
		r.detach(req)
	}
}

// Config 当前生效（或已排队）的配置
func (r *Room) Config() game.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// UpdateConfig 校验后排队，在下一次 Tick 开始时生效
func (r *Room) UpdateConfig(cfg game.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case r.configChan <- cfg:
		r.cfg = cfg
		return nil
	default:
		return errors.New("too many pending config updates")
	}
}

// BeginTick 重置帧内状态
func (r *Room) BeginTick() {
	r.pendingDir = game.DirNone
	r.restart = false
}

// ProcessInputs 非阻塞地取完当前所有输入。方向以最后一条为准。
func (r *Room) ProcessInputs() {
	for {
		select {
		case req := <-r.leaveChan:
			r.detach(req)
		case cfg := <-r.configChan:
			if err := r.engine.Reconfigure(cfg); err != nil {
				r.log.Warnf("config rejected: %v", err)
			}
		case in := <-r.inputChan:
			if in.PlayerID != r.Pilot() {
				r.metrics.IncIgnored()
				continue
			}
			switch {
			case in.Restart:
				r.restart = true
			case in.Command.Valid():
				r.pendingDir = in.Command
			default:
				r.metrics.IncInvalid()
				continue
			}
			r.metrics.IncAccepted()
		default:
			return
		}
	}
}

// UpdateWorld 推进一格，或在收到重开请求时整体重置
func (r *Room) UpdateWorld() {
	if r.restart {
		if err := r.engine.Restart(); err != nil {
			r.log.Errorf("restart failed: %v", err)
			return
		}
		r.metrics.IncRestarts()
		r.tickSeq.Store(0)
		r.result = r.engine.Last()
		return
	}
	res, err := r.engine.Tick(r.pendingDir)
	if err != nil {
		// 网格已满之类的不变量破坏，本局按结束处理
		r.log.Errorf("tick %d: %v", res.Tick, err)
	}
	r.tickSeq.Store(res.Tick)
	if res.Grew {
		r.metrics.IncFoodEaten()
	}
	if res.GameOver && !r.result.GameOver {
		r.metrics.IncGamesOver()
	}
	r.result = res
}

// Broadcast 将当前结果广播给房间内所有连接
func (r *Room) Broadcast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// 各编码都保留最新一帧，便于新连接补发
	f, err := encodeFrames(stateMessage{Type: "state", Room: r.ID, TickResult: r.result})
	if err != nil {
		r.log.Errorf("encode state: %v", err)
		return
	}
	r.frames = f
	for _, p := range r.players {
		if p.Conn != nil {
			p.Conn.Enqueue(f[p.Conn.codec])
		}
	}
}

// Step 执行完整的一帧：处理输入 → 更新世界 → 广播结果
func (r *Room) Step() {
	start := time.Now()
	r.BeginTick()
	r.ProcessInputs()
	r.UpdateWorld()
	r.Broadcast()
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// Result 最近一帧结果（仅 Tick 协程或测试中调用）
func (r *Room) Result() game.TickResult { return r.result }

// Close 停止 Tick 并断开所有连接
func (r *Room) Close() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.players {
		if p.Conn != nil {
			p.Conn.Close()
		}
		delete(r.players, id)
	}
	r.order = nil
}
