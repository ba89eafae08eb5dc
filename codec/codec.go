// Package codec serializes packet payloads. The wire framing above it is
// fixed; the payload encoding is pluggable.
package codec

import (
	"encoding/json"
	"errors"

	"google.golang.org/protobuf/proto"
)

var (
	errCodecNotInit = errors.New("codec not init")

	_codec Codec = &DefaultCodec{}
)

// Codec 解码器.
type Codec interface {
	Encode(m any, b []byte) ([]byte, error)
	Decode(a any, b []byte) error
}

// Encode 打包.
func Encode(m any, b []byte) ([]byte, error) {
	if _codec == nil {
		return nil, errCodecNotInit
	}
	return _codec.Encode(m, b)
}

// Decode 解包.
func Decode(a any, b []byte) error {
	if _codec == nil {
		return errCodecNotInit
	}
	return _codec.Decode(a, b)
}

// SetCodec 设置解码器.
func SetCodec(c Codec) {
	_codec = c
}

// DefaultCodec marshals protobuf messages natively and falls back to JSON
// for plain structs.
type DefaultCodec struct{}

// Encode ...
func (c *DefaultCodec) Encode(m any, b []byte) ([]byte, error) {
	if pm, ok := m.(proto.Message); ok {
		return proto.MarshalOptions{}.MarshalAppend(b, pm)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return append(b, data...), nil
}

// Decode ...
func (c *DefaultCodec) Decode(a any, b []byte) error {
	if pm, ok := a.(proto.Message); ok {
		return proto.Unmarshal(b, pm)
	}
	return json.Unmarshal(b, a)
}
