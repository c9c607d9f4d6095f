package game

import (
	"slices"
	"time"
)

// State 一局游戏的全部状态。字段只由 Engine 修改，外部通过只读方法访问。
type State struct {
	snake   []Cell // snake[0] 为蛇头，长度始终 >= 1
	food    Food
	special *Food

	dir     Direction
	pending Direction

	score int
	lives int

	slowLeft  time.Duration
	slowFresh bool // 减速在本 Tick 内刚生效，不扣时
	interval  time.Duration

	gameOver bool
	tick     uint64
}

func newState(cfg Config) *State {
	return &State{
		snake:    []Cell{cfg.Start},
		dir:      cfg.StartDir,
		pending:  cfg.StartDir,
		lives:    cfg.StartLives,
		interval: cfg.BaseInterval,
	}
}

func (s *State) Snake() []Cell { return slices.Clone(s.snake) }
func (s *State) Head() Cell { return s.snake[0] }
func (s *State) Len() int { return len(s.snake) }
func (s *State) Food() Food { return s.food }
func (s *State) Direction() Direction { return s.dir }
func (s *State) Pending() Direction { return s.pending }
func (s *State) Score() int { return s.score }
func (s *State) Lives() int { return s.lives }
func (s *State) SlowLeft() time.Duration { return s.slowLeft }
func (s *State) Interval() time.Duration { return s.interval }
func (s *State) GameOver() bool { return s.gameOver }
func (s *State) Tick() uint64 { return s.tick }

// Special 返回特殊食物副本，没有时为 nil
func (s *State) Special() *Food {
	if s.special == nil {
		return nil
	}
	f := *s.special
	return &f
}

// TickResult 每个 Tick 交给渲染端的结果
type TickResult struct {
	Tick      uint64    `json:"tick" msgpack:"tick"`
	Snake     []Cell    `json:"snake" msgpack:"snake"`
	Direction Direction `json:"direction" msgpack:"direction"`
	Food      Food      `json:"food" msgpack:"food"`
	Special   *Food     `json:"special,omitempty" msgpack:"special,omitempty"`

	Score     int `json:"score" msgpack:"score"`
	HighScore int `json:"highScore" msgpack:"highScore"`
	Lives     int `json:"lives" msgpack:"lives"`

	IntervalMs      int64 `json:"intervalMs" msgpack:"intervalMs"`
	IntervalChanged bool  `json:"intervalChanged,omitempty" msgpack:"intervalChanged,omitempty"`

	Grew         bool     `json:"grew,omitempty" msgpack:"grew,omitempty"`
	Ate          FoodKind `json:"ate,omitempty" msgpack:"ate,omitempty"`
	LostLife     bool     `json:"lostLife,omitempty" msgpack:"lostLife,omitempty"`
	NewHighScore bool     `json:"newHighScore,omitempty" msgpack:"newHighScore,omitempty"`
	GameOver     bool     `json:"gameOver" msgpack:"gameOver"`
}

// Interval 以 time.Duration 返回 IntervalMs
func (r TickResult) Interval() time.Duration {
	return time.Duration(r.IntervalMs) * time.Millisecond
}

// fill 用当前状态补齐结果中的快照字段，事件字段由调用方设置
func (s *State) fill(r *TickResult, high int) {
	r.Tick = s.tick
	r.Snake = s.Snake()
	r.Direction = s.dir
	r.Food = s.food
	r.Special = s.Special()
	r.Score = s.score
	r.HighScore = high
	r.Lives = s.lives
	r.IntervalMs = s.interval.Milliseconds()
	r.GameOver = s.gameOver
}
