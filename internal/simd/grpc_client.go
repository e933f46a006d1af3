package simd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// SimulationClient calls the Simulation service over a client connection
type SimulationClient struct {
	cc grpc.ClientConnInterface
}

func NewSimulationClient(cc grpc.ClientConnInterface) *SimulationClient {
	return &SimulationClient{cc: cc}
}

func (c *SimulationClient) invoke(ctx context.Context, method string, body map[string]any, opts ...grpc.CallOption) (map[string]any, error) {
	in, err := toStruct(body)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *SimulationClient) CreateRun(ctx context.Context, req CreateRunRequest, opts ...grpc.CallOption) (map[string]any, error) {
	return c.invoke(ctx, "CreateRun", map[string]any{
		"run_id":          req.RunID,
		"input":           req.Input,
		"callback_secret": req.CallbackSecret,
	}, opts...)
}

func (c *SimulationClient) GetRun(ctx context.Context, runID string, opts ...grpc.CallOption) (map[string]any, error) {
	return c.invoke(ctx, "GetRun", map[string]any{"run_id": runID}, opts...)
}

func (c *SimulationClient) StopRun(ctx context.Context, runID string, opts ...grpc.CallOption) (map[string]any, error) {
	return c.invoke(ctx, "StopRun", map[string]any{"run_id": runID}, opts...)
}

func (c *SimulationClient) ListRuns(ctx context.Context, limit int, statusFilter string, opts ...grpc.CallOption) (map[string]any, error) {
	body := map[string]any{"limit": limit}
	if statusFilter != "" {
		body["status"] = statusFilter
	}
	return c.invoke(ctx, "ListRuns", body, opts...)
}

func (c *SimulationClient) GetRunMetrics(ctx context.Context, runID string, opts ...grpc.CallOption) (map[string]any, error) {
	return c.invoke(ctx, "GetRunMetrics", map[string]any{"run_id": runID}, opts...)
}

// RunEventStream receives events from StreamRunEvents
type RunEventStream struct {
	stream grpc.ClientStream
}

// Recv returns the next event, or io.EOF once the server closes the stream
func (s *RunEventStream) Recv() (map[string]any, error) {
	out := new(structpb.Struct)
	if err := s.stream.RecvMsg(out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *SimulationClient) StreamRunEvents(ctx context.Context, runID string, intervalMs int, opts ...grpc.CallOption) (*RunEventStream, error) {
	desc := &simulationServiceDesc.Streams[0]
	stream, err := c.cc.NewStream(ctx, desc, "/"+ServiceName+"/StreamRunEvents", opts...)
	if err != nil {
		return nil, err
	}
	in, err := toStruct(map[string]any{"run_id": runID, "interval_ms": intervalMs})
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &RunEventStream{stream: stream}, nil
}
