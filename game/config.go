package game

import (
	"fmt"
	"time"
)

// TailPolicy 自撞检测时如何看待本 Tick 空出的尾格
type TailPolicy int

const (
	// TailVacated 尾格本 Tick 被让出，可进入
	TailVacated TailPolicy = iota
	// TailBlocked 与移动前的完整身体比较，尾格仍算占用
	TailBlocked
)

func (p TailPolicy) String() string {
	if p == TailBlocked {
		return "blocked"
	}
	return "vacated"
}

// Config 一局游戏的规则参数
type Config struct {
	CanvasWidth  int `json:"canvasWidth"`
	CanvasHeight int `json:"canvasHeight"`
	CellSize     int `json:"cellSize"`
	Margin       int `json:"margin"` // 食物生成时避开的边框宽度（格）

	Start    Cell      `json:"start"`
	StartDir Direction `json:"startDir"`

	StartLives     int `json:"startLives"`
	MaxLives       int `json:"maxLives"`
	ExtraLifeBonus int `json:"extraLifeBonus"`

	BaseInterval  time.Duration `json:"baseInterval"`
	SlowFactor    int           `json:"slowFactor"`
	SlowDuration  time.Duration `json:"slowDuration"`
	SpecialChance float64       `json:"specialChance"`

	TailPolicy TailPolicy `json:"tailPolicy"`
}

// DefaultConfig 600x400 画布、20px 格子，即 30x20 网格
func DefaultConfig() Config {
	return Config{
		CanvasWidth:    600,
		CanvasHeight:   400,
		CellSize:       20,
		Start:          Cell{Col: 9, Row: 10},
		StartDir:       DirRight,
		StartLives:     1,
		MaxLives:       2,
		ExtraLifeBonus: 5,
		BaseInterval:   100 * time.Millisecond,
		SlowFactor:     2,
		SlowDuration:   5 * time.Second,
		SpecialChance:  0.02,
		TailPolicy:     TailVacated,
	}
}

// GridWidth 网格列数
func (c Config) GridWidth() int {
	if c.CellSize <= 0 {
		return 0
	}
	return c.CanvasWidth / c.CellSize
}

// GridHeight 网格行数
func (c Config) GridHeight() int {
	if c.CellSize <= 0 {
		return 0
	}
	return c.CanvasHeight / c.CellSize
}

// Validate 检查配置是否能开局
func (c Config) Validate() error {
	w, h := c.GridWidth(), c.GridHeight()
	switch {
	case c.CellSize <= 0:
		return fmt.Errorf("cell size must be positive, got %d", c.CellSize)
	case w < 2 || h < 2:
		return fmt.Errorf("grid %dx%d too small", w, h)
	case c.Margin < 0 || 2*c.Margin >= w || 2*c.Margin >= h:
		return fmt.Errorf("margin %d leaves no room on a %dx%d grid", c.Margin, w, h)
	case HitsWall(c.Start, w, h):
		return fmt.Errorf("start cell (%d,%d) outside %dx%d grid", c.Start.Col, c.Start.Row, w, h)
	case !c.StartDir.Valid():
		return fmt.Errorf("invalid start direction %d", c.StartDir)
	case c.StartLives < 1:
		return fmt.Errorf("start lives must be >= 1, got %d", c.StartLives)
	case c.MaxLives < c.StartLives:
		return fmt.Errorf("max lives %d below start lives %d", c.MaxLives, c.StartLives)
	case c.ExtraLifeBonus < 0:
		return fmt.Errorf("extra life bonus must be >= 0, got %d", c.ExtraLifeBonus)
	case c.BaseInterval <= 0:
		return fmt.Errorf("base interval must be positive, got %s", c.BaseInterval)
	case c.SlowFactor < 1:
		return fmt.Errorf("slow factor must be >= 1, got %d", c.SlowFactor)
	case c.SlowDuration < 0:
		return fmt.Errorf("slow duration must be >= 0, got %s", c.SlowDuration)
	case c.SpecialChance < 0 || c.SpecialChance > 1:
		return fmt.Errorf("special chance %.3f outside [0,1]", c.SpecialChance)
	}
	return nil
}
