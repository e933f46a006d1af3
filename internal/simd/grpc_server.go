package simd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "vaxsim.v1.Simulation"

// Messages on the wire are google.protobuf.Struct values carrying the same
// JSON documents the HTTP API serves.

// CreateRunRequest is the body of a create call on either transport
type CreateRunRequest struct {
	RunID          string    `json:"run_id,omitempty"`
	Input          *RunInput `json:"input"`
	CallbackSecret string    `json:"callback_secret,omitempty"`
}

type runIDRequest struct {
	RunID string `json:"run_id"`
}

type listRunsRequest struct {
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
	Status string `json:"status,omitempty"`
}

type streamRequest struct {
	RunID      string `json:"run_id"`
	IntervalMs int    `json:"interval_ms,omitempty"`
}

// SimulationServer is the server API for the Simulation service
type SimulationServer interface {
	CreateRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListRuns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRunMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StreamRunEvents(*structpb.Struct, grpc.ServerStream) error
}

// SimulationGRPCServer implements SimulationServer on top of a RunStore
type SimulationGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
}

// NewSimulationGRPCServer creates a new SimulationGRPCServer with the provided RunStore and RunExecutor.
func NewSimulationGRPCServer(store *RunStore, executor *RunExecutor) *SimulationGRPCServer {
	return &SimulationGRPCServer{
		store:    store,
		Executor: executor,
	}
}

// RegisterSimulationServer registers srv on s
func RegisterSimulationServer(s grpc.ServiceRegistrar, srv SimulationServer) {
	s.RegisterService(&simulationServiceDesc, srv)
}

func (s *SimulationGRPCServer) CreateRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CreateRunRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.Input == nil {
		return nil, status.Error(codes.InvalidArgument, "input is required")
	}
	if req.Input.CallbackURL != "" {
		if err := validateCallbackURL(req.Input.CallbackURL); err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
	}
	req.Input.CallbackSecret = req.CallbackSecret

	rec, err := s.Executor.Submit(req.RunID, *req.Input)
	if err != nil {
		return nil, grpcError(err)
	}

	logger.Info("run created", "run_id", rec.Run.ID, "scenario", rec.Input.Scenario)
	return toStruct(map[string]any{"run": rec.Run})
}

func (s *SimulationGRPCServer) StopRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireRunID(in)
	if err != nil {
		return nil, err
	}

	updated, err := s.Executor.Stop(runID)
	if err != nil {
		return nil, grpcError(err)
	}
	logger.Info("run cancelled", "run_id", runID)
	return toStruct(map[string]any{"run": updated.Run})
}

func (s *SimulationGRPCServer) GetRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireRunID(in)
	if err != nil {
		return nil, err
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return toStruct(map[string]any{"run": rec.Run})
}

func (s *SimulationGRPCServer) ListRuns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req listRunsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	limit := 50
	if req.Limit > 0 {
		limit = req.Limit
	}
	var filter models.RunStatus
	if req.Status != "" {
		parsed, ok := parseRunStatus(req.Status)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "unknown status: %s", req.Status)
		}
		filter = parsed
	}

	recs := s.store.List(limit, req.Offset, filter)
	runs := make([]models.Run, 0, len(recs))
	for _, rec := range recs {
		run := rec.Run
		run.Metrics = nil
		runs = append(runs, run)
	}
	return toStruct(map[string]any{"runs": runs})
}

func (s *SimulationGRPCServer) GetRunMetrics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID, err := requireRunID(in)
	if err != nil {
		return nil, err
	}
	rec, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	if rec.Run.Metrics == nil {
		return nil, status.Error(codes.FailedPrecondition, ErrMetricsUnavailable.Error())
	}
	return toStruct(map[string]any{"metrics": rec.Run.Metrics})
}

// StreamRunEvents sends a status_changed event for every status transition it
// observes, then a metrics event once the run is terminal, and returns.
func (s *SimulationGRPCServer) StreamRunEvents(in *structpb.Struct, stream grpc.ServerStream) error {
	var req streamRequest
	if err := fromStruct(in, &req); err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if req.RunID == "" {
		return status.Error(codes.InvalidArgument, "run_id is required")
	}

	rec, ok := s.store.Get(req.RunID)
	if !ok {
		return status.Error(codes.NotFound, "run not found")
	}

	var previous models.RunStatus
	send := func(event map[string]any) error {
		event["run_id"] = req.RunID
		event["at_unix_ms"] = time.Now().UTC().UnixMilli()
		msg, err := toStruct(event)
		if err != nil {
			return err
		}
		return stream.SendMsg(msg)
	}

	interval := 200 * time.Millisecond
	if req.IntervalMs > 0 {
		interval = time.Duration(req.IntervalMs) * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if rec.Run.Status != previous {
			if err := send(map[string]any{
				"type":     "status_changed",
				"previous": previous,
				"current":  rec.Run.Status,
			}); err != nil {
				return err
			}
			previous = rec.Run.Status
		}
		if rec.Run.Status.IsTerminal() {
			if rec.Run.Metrics != nil {
				return send(map[string]any{
					"type":    "metrics",
					"metrics": rec.Run.Metrics,
				})
			}
			return nil
		}

		select {
		case <-stream.Context().Done():
			return stream.Context().Err()
		case <-ticker.C:
		}
		if rec, ok = s.store.Get(req.RunID); !ok {
			return status.Error(codes.NotFound, "run not found")
		}
	}
}

// UnaryLoggingInterceptor logs every unary call with its duration and code
func UnaryLoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logger.Debug("grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start))
	return resp, err
}

func requireRunID(in *structpb.Struct) (string, error) {
	var req runIDRequest
	if err := fromStruct(in, &req); err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}
	if req.RunID == "" {
		return "", status.Error(codes.InvalidArgument, "run_id is required")
	}
	return req.RunID, nil
}

// grpcError maps executor and store errors onto status codes
func grpcError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrRunExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, ErrRunTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrRunIDMissing),
		errors.Is(err, ErrInvalidRunID),
		errors.Is(err, ErrInvalidScenario),
		errors.Is(err, ErrScenarioMissing):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct converts a JSON-encodable value into a Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return s, nil
}

// fromStruct decodes a Struct into dst, rejecting unknown fields
func fromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func unaryHandler(call func(SimulationServer, context.Context, *structpb.Struct) (*structpb.Struct, error), method string) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SimulationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamRunEventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(SimulationServer).StreamRunEvents(in, stream)
}

var simulationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SimulationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRun", Handler: unaryHandler(SimulationServer.CreateRun, "CreateRun")},
		{MethodName: "GetRun", Handler: unaryHandler(SimulationServer.GetRun, "GetRun")},
		{MethodName: "StopRun", Handler: unaryHandler(SimulationServer.StopRun, "StopRun")},
		{MethodName: "ListRuns", Handler: unaryHandler(SimulationServer.ListRuns, "ListRuns")},
		{MethodName: "GetRunMetrics", Handler: unaryHandler(SimulationServer.GetRunMetrics, "GetRunMetrics")},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamRunEvents",
			Handler:       streamRunEventsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "vaxsim/v1/simulation.proto",
}
