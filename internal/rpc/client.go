package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/observe-l/slidewin/internal/wire"
)

type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

func (c *Client) Info(ctx context.Context, opts ...grpc.CallOption) (Info, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, infoMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return Info{}, err
	}
	return infoFromStruct(out), nil
}

// Decode sends numShots rows of packed detection events of numDetectors bits
// and returns the packed predictions.
func (c *Client) Decode(ctx context.Context, packed []byte, numShots, numDetectors int, opts ...grpc.CallOption) ([]byte, error) {
	frame, err := wire.Encode(wire.KindDetections, packed, numShots, numDetectors)
	if err != nil {
		return nil, err
	}
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, decodeMethod, wrapperspb.Bytes(frame), out, opts...); err != nil {
		return nil, err
	}
	f, err := wire.Decode(out.GetValue())
	if err != nil {
		return nil, err
	}
	if f.Kind != wire.KindPredictions || int(f.Shots) != numShots {
		return nil, fmt.Errorf("rpc: response frame has kind %d with %d shots, want predictions for %d", f.Kind, f.Shots, numShots)
	}
	return f.Payload, nil
}
