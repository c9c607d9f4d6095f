package game

import (
	"errors"
	"math/rand"
)

// ErrGridFull 网格内已无空格可放置食物（蛇长不应达到格子总数）
var ErrGridFull = errors.New("game: no free cell to spawn on")

// 随机采样的尝试上限，超过后改为扫描空格
const maxSpawnAttempts = 256

// SpawnPolicy 负责食物的位置与特殊食物的出现
type SpawnPolicy struct {
	rng    *rand.Rand
	cols   int
	rows   int
	margin int
	chance float64
}

// NewSpawnPolicy 按配置的网格与概率创建
func NewSpawnPolicy(cfg Config, rng *rand.Rand) *SpawnPolicy {
	return &SpawnPolicy{
		rng:    rng,
		cols:   cfg.GridWidth(),
		rows:   cfg.GridHeight(),
		margin: cfg.Margin,
		chance: cfg.SpecialChance,
	}
}

// SpawnFood 在不与蛇身及 avoid 重叠的格子上放置普通食物
func (p *SpawnPolicy) SpawnFood(snake []Cell, avoid ...Cell) (Cell, error) {
	return p.place(snake, avoid)
}

// SpawnSpecial 以固定概率生成特殊食物，种类在 SLOW_DOWN / EXTRA_LIFE 中均匀选择。
// 未命中概率时返回 nil, nil。
func (p *SpawnPolicy) SpawnSpecial(snake []Cell, food Cell) (*Food, error) {
	if p.chance <= 0 || p.rng.Float64() >= p.chance {
		return nil, nil
	}
	c, err := p.place(snake, []Cell{food})
	if err != nil {
		return nil, err
	}
	kind := FoodSlowDown
	if p.rng.Intn(2) == 1 {
		kind = FoodExtraLife
	}
	f := newFood(c, kind)
	return &f, nil
}

func (p *SpawnPolicy) place(snake, avoid []Cell) (Cell, error) {
	w := p.cols - 2*p.margin
	h := p.rows - 2*p.margin
	if w <= 0 || h <= 0 {
		return Cell{}, ErrGridFull
	}
	for i := 0; i < maxSpawnAttempts; i++ {
		c := Cell{Col: p.margin + p.rng.Intn(w), Row: p.margin + p.rng.Intn(h)}
		if !HitsBody(c, snake) && !HitsBody(c, avoid) {
			return c, nil
		}
	}
	// 网格接近填满时随机采样效率很低，改为在空格中均匀挑选
	free := make([]Cell, 0, w*h)
	for row := p.margin; row < p.margin+h; row++ {
		for col := p.margin; col < p.margin+w; col++ {
			c := Cell{Col: col, Row: row}
			if !HitsBody(c, snake) && !HitsBody(c, avoid) {
				free = append(free, c)
			}
		}
	}
	if len(free) == 0 {
		return Cell{}, ErrGridFull
	}
	return free[p.rng.Intn(len(free))], nil
}
