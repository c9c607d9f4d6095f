package game

import (
	"fmt"
	"sync"
)

// HighScoreStore 外部的单键整数存储
type HighScoreStore interface {
	Load() (int, error)
	Save(value int) error
}

// MemoryStore 进程内存储，用于测试或不需要落盘的场景
type MemoryStore struct {
	mu    sync.Mutex
	value int
}

func (m *MemoryStore) Load() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, nil
}

func (m *MemoryStore) Save(value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	return nil
}

// ScoreKeeper 维护最高分并在刷新时写回存储
type ScoreKeeper struct {
	store HighScoreStore
	high  int
}

func NewScoreKeeper(store HighScoreStore) *ScoreKeeper {
	if store == nil {
		store = &MemoryStore{}
	}
	return &ScoreKeeper{store: store}
}

// Load 从存储读取最高分，不会把已有的更高值降下来
func (k *ScoreKeeper) Load() error {
	v, err := k.store.Load()
	if err != nil {
		return fmt.Errorf("load high score: %w", err)
	}
	if v > k.high {
		k.high = v
	}
	return nil
}

// Record 记录一次得分，返回最高分是否被刷新
func (k *ScoreKeeper) Record(score int) bool {
	if score <= k.high {
		return false
	}
	k.high = score
	return true
}

// Persist 写回当前最高分
func (k *ScoreKeeper) Persist() error {
	if err := k.store.Save(k.high); err != nil {
		return fmt.Errorf("persist high score %d: %w", k.high, err)
	}
	return nil
}

func (k *ScoreKeeper) HighScore() int { return k.high }
