package pb

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec marshals messages as JSON instead of wire-format protobuf,
// since this package's messages are plain structs, not generated
// proto.Message types. It is registered under the name "proto" so it
// replaces grpc-go's default codec for every connection in this process.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "proto" }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
