package server

import (
	"strings"

	"snakearena/game"
)

// Input 客户端输入（意图），由房间在 Tick 中解释
type Input struct {
	PlayerID PlayerID
	Command  game.Direction
	Restart  bool
	Seq      int64 // 客户端本地序列号
}

// 入站消息，JSON 文本帧或 msgpack 二进制帧
// 示例：{"type":"move","command":"up"}、{"type":"restart"}
type InputMessage struct {
	Type    string `json:"type" msgpack:"type"`
	Command string `json:"command,omitempty" msgpack:"command,omitempty"`
	Seq     int64  `json:"seq,omitempty" msgpack:"seq,omitempty"`
}

// toInput 转换为房间输入；未知类型返回 false。
// 未知方向不报错，交给引擎按无输入处理。
func (im InputMessage) toInput(pid PlayerID) (Input, bool) {
	switch strings.ToLower(im.Type) {
	case "move":
		return Input{PlayerID: pid, Command: game.ParseDirection(im.Command), Seq: im.Seq}, true
	case "restart":
		return Input{PlayerID: pid, Restart: true, Seq: im.Seq}, true
	}
	return Input{}, false
}
