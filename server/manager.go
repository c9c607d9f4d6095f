package server

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"go.uber.org/zap"

	"snakearena/game"
)

// RoomManager 管理多个房间的生命周期，所有房间共享同一个最高分存储
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	ctx   context.Context
	cfg   game.Config
	store game.HighScoreStore
	log   *zap.SugaredLogger
	opts  []game.Option
}

// NewRoomManager 新房间使用 cfg 作为初始规则；ctx 结束时各房间停止 Tick
func NewRoomManager(ctx context.Context, cfg game.Config, store game.HighScoreStore, log *zap.SugaredLogger, opts ...game.Option) *RoomManager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if store == nil {
		store = &game.MemoryStore{}
	}
	return &RoomManager{
		rooms: make(map[string]*Room),
		ctx:   ctx,
		cfg:   cfg,
		store: store,
		log:   log,
		opts:  opts,
	}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[id]; ok {
		return r, nil
	}
	opts := append([]game.Option{game.WithStore(m.store)}, m.opts...)
	r, err := NewRoom(id, m.cfg, m.log, opts...)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = r
	r.StartTicker(m.ctx)
	m.log.Infof("room %s created: grid=%dx%d interval=%s", id, m.cfg.GridWidth(), m.cfg.GridHeight(), m.cfg.BaseInterval)
	return r, nil
}

// Room 查找已存在的房间
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

// RoomIDs 按字典序返回所有房间
func (m *RoomManager) RoomIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CloseAll 停止所有房间
func (m *RoomManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Close()
		delete(m.rooms, id)
	}
}

// Store 共享的最高分存储
func (m *RoomManager) Store() game.HighScoreStore { return m.store }

// roomParam 读取 ?room=，缺省为 room-1
func roomParam(r *http.Request) string {
	if id := r.URL.Query().Get("room"); id != "" {
		return id
	}
	return "room-1"
}
