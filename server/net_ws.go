package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws    *websocket.Conn
	codec Codec

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewClientConn(ws *websocket.Conn, codec Codec) *ClientConn {
	return &ClientConn{
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		// 为了实时性丢弃，防止阻塞 Tick
	}
}

// Close 关闭发送队列与底层连接，可重复调用
func (c *ClientConn) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(c.codec.MessageType(), msg); err != nil {
			return
		}
	}
}

// readPump 读取客户端输入，转换为 Input 注入房间
func (c *ClientConn) readPump(room *Room, playerID PlayerID) {
	defer c.ws.Close()
	// 读泵退出时，通知房间在 Tick 线程中移除该玩家
	defer room.RequestLeave(playerID, c)
	c.ws.SetReadLimit(4 << 10)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		mt, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		// 入站按帧类型解码，与出站编码无关
		dec := CodecJSON
		if mt == websocket.BinaryMessage {
			dec = CodecMsgpack
		}
		var im InputMessage
		if err := dec.Unmarshal(payload, &im); err != nil {
			room.metrics.IncInvalid()
			continue
		}
		in, ok := im.toInput(playerID)
		if !ok {
			room.metrics.IncInvalid()
			continue
		}
		room.OnInput(in)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=room-1&player=alice&codec=msgpack
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := roomParam(r)
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "missing player query", http.StatusBadRequest)
		return
	}
	room, err := m.GetOrCreateRoom(roomID)
	if err != nil {
		m.log.Errorf("create room %s: %v", roomID, err)
		http.Error(w, "room unavailable", http.StatusInternalServerError)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warnf("upgrade error: %v", err)
		return
	}

	client := NewClientConn(ws, ParseCodec(r.URL.Query().Get("codec")))
	room.JoinPlayer(PlayerID(playerID), client)

	go client.writePump()
	go client.readPump(room, PlayerID(playerID))
}
