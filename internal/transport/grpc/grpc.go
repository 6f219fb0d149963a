// Package grpc implements the gRPC transport for proagent.
//
// The server registers the standard grpc.health.v1 service and the
// proagent.v1.Agent service. Agent messages are JSON encoded: clients
// select the codec with the "json" content subtype
// (grpc.CallContentSubtype("json")).
package grpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transport"
)

// ServiceName is the fully qualified Agent service name.
const ServiceName = "proagent.v1.Agent"

// Full method names.
const (
	ProcessMethod = "/" + ServiceName + "/Process"
	ResolveMethod = "/" + ServiceName + "/Resolve"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals Agent messages as JSON.
type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Upload is a file sent inline with a ProcessRequest.
type Upload struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// ProcessRequest runs a prompt against inline uploads.
type ProcessRequest struct {
	Prompt string   `json:"prompt"`
	Files  []Upload `json:"files,omitempty"`
}

// ResolveRequest resolves a prompt without running it. Files are names
// only.
type ResolveRequest struct {
	Prompt string   `json:"prompt"`
	Files  []string `json:"files,omitempty"`
}

// AgentServer is the server API for the Agent service.
type AgentServer interface {
	Process(ctx context.Context, req *ProcessRequest) (*message.Response, error)
	Resolve(ctx context.Context, req *ResolveRequest) (*message.Call, error)
}

var agentServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AgentServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Process", Handler: processHandler},
		{MethodName: "Resolve", Handler: resolveHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func processHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ProcessRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServer).Process(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProcessMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AgentServer).Process(ctx, req.(*ProcessRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func resolveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ResolveRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AgentServer).Resolve(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ResolveMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AgentServer).Resolve(ctx, req.(*ResolveRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// agentService adapts a transport.Handler to AgentServer.
type agentService struct {
	handler transport.Handler
	uploads *storage.Uploads
}

func (s *agentService) Process(ctx context.Context, req *ProcessRequest) (*message.Response, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, status.Error(codes.InvalidArgument, "prompt is required")
	}

	var files []message.File
	defer func() { s.uploads.Discard(files) }()
	for _, u := range req.Files {
		f, err := s.uploads.Save(u.Name, bytes.NewReader(u.Data))
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				return nil, status.Error(codes.ResourceExhausted, err.Error())
			}
			return nil, status.Errorf(codes.Internal, "saving uploads: %v", err)
		}
		files = append(files, f)
	}

	return s.handler.Handle(ctx, &message.Request{
		Prompt:    prompt,
		Files:     files,
		Timestamp: time.Now(),
	}), nil
}

func (s *agentService) Resolve(ctx context.Context, req *ResolveRequest) (*message.Call, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, status.Error(codes.InvalidArgument, "prompt is required")
	}
	call := s.handler.Resolve(ctx, req.Prompt, message.NewFiles(req.Files))
	return &call, nil
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port     int
	uploads  *storage.Uploads
	maxBytes int
	health   *health.Server
	server   *grpc.Server
}

// New creates a new gRPC transport on the given port. maxMessageBytes
// bounds a single request; zero keeps the gRPC default.
func New(port int, uploads *storage.Uploads, maxMessageBytes int) *Transport {
	return &Transport{
		port:     port,
		uploads:  uploads,
		maxBytes: maxMessageBytes,
		health:   health.NewServer(),
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// SetServing flips the health status reported for the server and the
// Agent service.
func (t *Transport) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	t.health.SetServingStatus("", st)
	t.health.SetServingStatus(ServiceName, st)
}

// Server builds the gRPC server with every service registered.
func (t *Transport) Server(h transport.Handler) *grpc.Server {
	var opts []grpc.ServerOption
	if t.maxBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(t.maxBytes))
	}
	srv := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(srv, t.health)
	srv.RegisterService(&agentServiceDesc, &agentService{handler: h, uploads: t.uploads})
	return srv
}

// Listen starts the gRPC server and routes incoming requests to h.
func (t *Transport) Listen(ctx context.Context, h transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return t.Serve(ctx, lis, h)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, h transport.Handler) error {
	t.server = t.Server(h)
	t.SetServing(true)

	slog.Info("grpc transport listening", "addr", lis.Addr().String())

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.health.Shutdown()
		t.server.GracefulStop()
	}()

	if err := t.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.health.Shutdown()
		t.server.GracefulStop()
	}
	return nil
}
