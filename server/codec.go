package server

import (
	"encoding/json"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec 出站消息的编码方式，由连接时的 ?codec= 决定
type Codec int

const (
	CodecJSON Codec = iota
	CodecMsgpack
)

// ParseCodec 未识别时退回 JSON
func ParseCodec(s string) Codec {
	if strings.EqualFold(s, "msgpack") {
		return CodecMsgpack
	}
	return CodecJSON
}

func (c Codec) String() string {
	if c == CodecMsgpack {
		return "msgpack"
	}
	return "json"
}

// MessageType JSON 走文本帧，msgpack 走二进制帧
func (c Codec) MessageType() int {
	if c == CodecMsgpack {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

func (c Codec) Marshal(v any) ([]byte, error) {
	if c == CodecMsgpack {
		return msgpack.Marshal(v)
	}
	return json.Marshal(v)
}

func (c Codec) Unmarshal(b []byte, v any) error {
	if c == CodecMsgpack {
		return msgpack.Unmarshal(b, v)
	}
	return json.Unmarshal(b, v)
}

var codecs = []Codec{CodecJSON, CodecMsgpack}

// frames 同一条消息在各编码下的字节
type frames [2][]byte

func encodeFrames(v any) (frames, error) {
	var f frames
	for _, c := range codecs {
		b, err := c.Marshal(v)
		if err != nil {
			return f, err
		}
		f[c] = b
	}
	return f, nil
}
