package codec

import (
	"errors"
	"strings"

	"github.com/lonng/coins/protocol/message"
)

// ErrUnknownCodec 未知的编解码器名称
var ErrUnknownCodec = errors.New("unknown codec")

// Codec 消息和帧数据之间的转换
type Codec interface {
	// Name 编解码器名称
	Name() string

	// Binary 是否使用二进制帧, 否则使用文本帧
	Binary() bool

	// Encode 把消息编码为一帧数据
	Encode(m *message.Message) ([]byte, error)

	// Decode 把一帧数据解码为消息
	Decode(data []byte) (*message.Message, error)
}

// Lookup 按名称查找编解码器, 名称不区分大小写
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return NewJSON(), nil
	case "proto", "protobuf":
		return NewProto(), nil
	default:
		return nil, ErrUnknownCodec
	}
}
