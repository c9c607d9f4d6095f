package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// adminConfig 可热更新的房间规则，字段为空表示不修改
type adminConfig struct {
	BaseIntervalMs *int64   `json:"baseIntervalMs,omitempty"`
	SlowFactor     *int     `json:"slowFactor,omitempty"`
	SlowDurationMs *int64   `json:"slowDurationMs,omitempty"`
	SpecialChance  *float64 `json:"specialChance,omitempty"`
	ExtraLifeBonus *int     `json:"extraLifeBonus,omitempty"`
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新基本规则）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room, err := m.GetOrCreateRoom(roomID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	cfg := room.Config()

	switch r.Method {
	case http.MethodGet:
		interval := cfg.BaseInterval.Milliseconds()
		slow := cfg.SlowDuration.Milliseconds()
		cur := adminConfig{
			BaseIntervalMs: &interval,
			SlowFactor:     &cfg.SlowFactor,
			SlowDurationMs: &slow,
			SpecialChance:  &cfg.SpecialChance,
			ExtraLifeBonus: &cfg.ExtraLifeBonus,
		}
		writeJSON(w, http.StatusOK, cur)
		return
	case http.MethodPost:
		var body adminConfig
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.BaseIntervalMs != nil {
			cfg.BaseInterval = time.Duration(*body.BaseIntervalMs) * time.Millisecond
		}
		if body.SlowFactor != nil {
			cfg.SlowFactor = *body.SlowFactor
		}
		if body.SlowDurationMs != nil {
			cfg.SlowDuration = time.Duration(*body.SlowDurationMs) * time.Millisecond
		}
		if body.SpecialChance != nil {
			cfg.SpecialChance = *body.SpecialChance
		}
		if body.ExtraLifeBonus != nil {
			cfg.ExtraLifeBonus = *body.ExtraLifeBonus
		}
		if err := room.UpdateConfig(cfg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		m.log.Infof("config updated: room=%s interval=%s slow=%dx/%s special=%.3f bonus=%d",
			roomID, cfg.BaseInterval, cfg.SlowFactor, cfg.SlowDuration, cfg.SpecialChance, cfg.ExtraLifeBonus)
		return
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	room, ok := m.Room(roomID)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}
	payload := map[string]any{
		"room":    roomID,
		"tick":    room.tickSeq.Load(),
		"players": room.PlayerCount(),
		"pilot":   room.Pilot(),
		"metrics": room.metrics.Snapshot(),
	}
	writeJSON(w, http.StatusOK, payload)
}

// HandleHighScore 返回持久化的最高分
// GET /highscore
func (m *RoomManager) HandleHighScore(w http.ResponseWriter, r *http.Request) {
	v, err := m.store.Load()
	if err != nil {
		m.log.Warnf("load high score: %v", err)
		http.Error(w, "high score unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"highScore": v})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
