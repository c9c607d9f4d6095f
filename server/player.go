package server

// PlayerID 表示玩家唯一标识
type PlayerID string

// Role 房间内身份：只有操控者的输入会驱动蛇
type Role string

const (
	RolePilot     Role = "pilot"
	RoleSpectator Role = "spectator"
)

// Player 房间内的连接
type Player struct {
	ID   PlayerID
	Role Role

	Conn *ClientConn // 网络连接的发送端（写协程）
}

// welcomeMessage 加入房间时告知身份
type welcomeMessage struct {
	Type string `json:"type" msgpack:"type"`
	Room string `json:"room" msgpack:"room"`
	Role Role   `json:"role" msgpack:"role"`
	Cols int    `json:"cols" msgpack:"cols"`
	Rows int    `json:"rows" msgpack:"rows"`
}
