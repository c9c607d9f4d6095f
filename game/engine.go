package game

import (
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Engine 单局游戏的 Tick 引擎：每次 Tick 推进一格。
// 非并发安全，调用方需保证同一时刻只有一个 Tick 在执行。
type Engine struct {
	cfg   Config
	state *State
	spawn *SpawnPolicy
	score *ScoreKeeper
	rng   *rand.Rand
	store HighScoreStore
	log   *zap.SugaredLogger

	last TickResult
}

// Option 引擎构造选项
type Option func(*Engine)

// WithRand 指定随机源，测试中用固定种子
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// WithStore 指定最高分存储
func WithStore(s HighScoreStore) Option {
	return func(e *Engine) { e.store = s }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine 校验配置、读取最高分并开出第一局
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if e.log == nil {
		e.log = zap.NewNop().Sugar()
	}
	e.spawn = NewSpawnPolicy(cfg, e.rng)
	e.score = NewScoreKeeper(e.store)
	if err := e.score.Load(); err != nil {
		// 读取失败不影响开局，最高分从 0 开始
		e.log.Warnf("high score unavailable: %v", err)
	}
	if err := e.Restart(); err != nil {
		return nil, err
	}
	return e, nil
}

// Restart 整体重置本局状态，最高分保留
func (e *Engine) Restart() error {
	if e.state != nil {
		e.recordScore(e.state.score)
	}
	st := newState(e.cfg)
	c, err := e.spawn.SpawnFood(st.snake)
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	st.food = newFood(c, FoodNormal)
	e.state = st
	e.last = TickResult{}
	st.fill(&e.last, e.score.HighScore())
	e.log.Debugf("game restarted: start=(%d,%d) food=(%d,%d) lives=%d",
		e.cfg.Start.Col, e.cfg.Start.Row, c.Col, c.Row, st.lives)
	return nil
}

// Reconfigure 热更新节奏相关参数；网格尺寸与起点在下一次 Restart 时生效
func (e *Engine) Reconfigure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	e.cfg = cfg
	e.spawn = NewSpawnPolicy(cfg, e.rng)
	if e.state.slowLeft > 0 {
		e.state.interval = cfg.BaseInterval * time.Duration(cfg.SlowFactor)
	} else {
		e.state.interval = cfg.BaseInterval
	}
	return nil
}

// Tick 推进一格。input 为 DirNone 或非法值时沿用待定方向。
// 返回的 error 只有 ErrGridFull 一类内部不变量被破坏的情况，此时本局直接结束。
func (e *Engine) Tick(input Direction) (TickResult, error) {
	s := e.state
	if s.gameOver {
		return e.last, nil
	}
	s.tick++
	elapsed := s.interval
	var res TickResult

	if input.Valid() && input != s.dir.Opposite() {
		s.pending = input
	}
	if s.pending != s.dir && s.pending != s.dir.Opposite() {
		s.dir = s.pending
	}

	head := s.snake[0].Add(s.dir.Delta())
	grew := head == s.food.Cell
	body := make([]Cell, 0, len(s.snake)+1)
	body = append(body, head)
	if grew {
		body = append(body, s.snake...)
	} else {
		body = append(body, s.snake[:len(s.snake)-1]...)
	}

	var fatal error
	if e.collides(head, body) {
		// 碰撞不提交本次移动，蛇保持原位
		s.lives--
		res.LostLife = true
		if s.lives <= 0 {
			s.lives = 0
			s.gameOver = true
		}
		e.log.Infof("collision at (%d,%d): lives=%d score=%d", head.Col, head.Row, s.lives, s.score)
	} else {
		s.snake = body
		if grew {
			s.score++
			res.Grew = true
			res.Ate = FoodNormal
			if fatal = e.respawnFood(); fatal != nil {
				s.gameOver = true
			}
		}
		if s.special != nil && head == s.special.Cell {
			res.Ate = s.special.Kind
			e.applySpecial(s.special.Kind)
			s.special = nil
		}
		res.NewHighScore = e.recordScore(s.score)
	}

	if !s.gameOver {
		e.advanceTimers(elapsed)
		if s.special == nil && s.slowLeft == 0 {
			sp, err := e.spawn.SpawnSpecial(s.snake, s.food.Cell)
			if err != nil {
				fatal = fmt.Errorf("spawn special food: %w", err)
				s.gameOver = true
			}
			s.special = sp
		}
	}
	s.slowFresh = false

	if s.gameOver {
		e.recordScore(s.score)
		e.log.Infof("game over: score=%d high=%d ticks=%d", s.score, e.score.HighScore(), s.tick)
	}
	s.fill(&res, e.score.HighScore())
	res.IntervalChanged = s.interval != elapsed
	e.last = res
	return res, fatal
}

func (e *Engine) collides(head Cell, body []Cell) bool {
	if HitsWall(head, e.cfg.GridWidth(), e.cfg.GridHeight()) {
		return true
	}
	if e.cfg.TailPolicy == TailBlocked {
		return HitsBody(head, e.state.snake)
	}
	return HitsBody(head, body[1:])
}

func (e *Engine) respawnFood() error {
	s := e.state
	var avoid []Cell
	if s.special != nil {
		avoid = append(avoid, s.special.Cell)
	}
	c, err := e.spawn.SpawnFood(s.snake, avoid...)
	if err != nil {
		return fmt.Errorf("spawn food: %w", err)
	}
	s.food = newFood(c, FoodNormal)
	return nil
}

func (e *Engine) applySpecial(kind FoodKind) {
	s := e.state
	switch kind {
	case FoodSlowDown:
		if e.cfg.SlowDuration <= 0 {
			return
		}
		s.slowLeft = e.cfg.SlowDuration
		s.slowFresh = true
		s.interval = e.cfg.BaseInterval * time.Duration(e.cfg.SlowFactor)
		e.log.Debugf("slow down: interval=%s for %s", s.interval, s.slowLeft)
	case FoodExtraLife:
		if s.lives < e.cfg.MaxLives {
			s.lives++
		}
		s.score += e.cfg.ExtraLifeBonus
		e.log.Debugf("extra life: lives=%d score=%d", s.lives, s.score)
	}
}

func (e *Engine) advanceTimers(elapsed time.Duration) {
	s := e.state
	if s.slowLeft <= 0 || s.slowFresh {
		return
	}
	s.slowLeft -= elapsed
	if s.slowLeft <= 0 {
		s.slowLeft = 0
		s.interval = e.cfg.BaseInterval
	}
}

// recordScore 刷新最高分时立即写回存储；写失败只记录日志
func (e *Engine) recordScore(score int) bool {
	if !e.score.Record(score) {
		return false
	}
	if err := e.score.Persist(); err != nil {
		e.log.Warnf("%v", err)
	}
	return true
}

// State 只读状态
func (e *Engine) State() *State { return e.state }

// Last 最近一次 Tick（或 Restart）的结果
func (e *Engine) Last() TickResult { return e.last }

// Interval 调度器在下一次 Tick 前应等待的时长
func (e *Engine) Interval() time.Duration { return e.state.interval }

func (e *Engine) GameOver() bool { return e.state.gameOver }

func (e *Engine) HighScore() int { return e.score.HighScore() }

func (e *Engine) Config() Config { return e.cfg }
