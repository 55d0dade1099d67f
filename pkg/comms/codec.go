package comms

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype the QueueService messages travel as.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

// CallOption selects the JSON codec for a call. NewQueueServiceClient adds it
// to every call, so only raw conn.Invoke users need it.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(CodecName)
}
