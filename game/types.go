package game

import (
	"fmt"
	"strings"
)

// Cell 网格坐标（列, 行）
type Cell struct {
	Col int `json:"col" msgpack:"col"`
	Row int `json:"row" msgpack:"row"`
}

// Add 返回偏移后的格子
func (c Cell) Add(d Cell) Cell {
	return Cell{Col: c.Col + d.Col, Row: c.Row + d.Row}
}

// Direction 移动方向；DirNone 表示本 Tick 没有输入
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Valid 仅四个基本方向有效
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// Opposite 返回反方向，无效方向返回 DirNone
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// Delta 单位位移向量（行向下增长）
func (d Direction) Delta() Cell {
	switch d {
	case DirUp:
		return Cell{Row: -1}
	case DirDown:
		return Cell{Row: 1}
	case DirLeft:
		return Cell{Col: -1}
	case DirRight:
		return Cell{Col: 1}
	}
	return Cell{}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	}
	return "none"
}

// ParseDirection 解析客户端命令，未知命令返回 DirNone
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp
	case "down":
		return DirDown
	case "left":
		return DirLeft
	case "right":
		return DirRight
	}
	return DirNone
}

// MarshalText 出站消息中方向以字符串表示，与入站命令一致
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	v := ParseDirection(string(b))
	if v == DirNone && !strings.EqualFold(string(b), "none") && len(b) > 0 {
		return fmt.Errorf("unknown direction %q", b)
	}
	*d = v
	return nil
}

// FoodKind 食物类别
type FoodKind int

const (
	FoodNone FoodKind = iota
	FoodNormal
	FoodSlowDown
	FoodExtraLife
)

func (k FoodKind) String() string {
	switch k {
	case FoodNormal:
		return "normal"
	case FoodSlowDown:
		return "slow_down"
	case FoodExtraLife:
		return "extra_life"
	}
	return "none"
}

func (k FoodKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FoodKind) UnmarshalText(b []byte) error {
	for _, v := range []FoodKind{FoodNone, FoodNormal, FoodSlowDown, FoodExtraLife} {
		if v.String() == string(b) {
			*k = v
			return nil
		}
	}
	if len(b) == 0 {
		*k = FoodNone
		return nil
	}
	return fmt.Errorf("unknown food kind %q", b)
}

// Color 渲染用颜色标签
func (k FoodKind) Color() string {
	switch k {
	case FoodNormal:
		return "red"
	case FoodSlowDown:
		return "blue"
	case FoodExtraLife:
		return "gold"
	}
	return ""
}

// Special 是否为特殊食物
func (k FoodKind) Special() bool {
	return k == FoodSlowDown || k == FoodExtraLife
}

// Food 场上的食物
type Food struct {
	Cell  Cell     `json:"cell" msgpack:"cell"`
	Kind  FoodKind `json:"kind" msgpack:"kind"`
	Color string   `json:"color" msgpack:"color"`
}

func newFood(c Cell, k FoodKind) Food {
	return Food{Cell: c, Kind: k, Color: k.Color()}
}
