package grpc

import (
	"context"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/resolve"
	"github.com/nadzzz/proagent/internal/storage"
)

type fakeHandler struct {
	handle func(ctx context.Context, req *message.Request) *message.Response
}

func (f fakeHandler) Handle(ctx context.Context, req *message.Request) *message.Response {
	return f.handle(ctx, req)
}

func (f fakeHandler) Resolve(_ context.Context, prompt string, files []message.File) message.Call {
	return resolve.Fallback(prompt, files)
}

func dial(t *testing.T, maxUpload int64, h fakeHandler) *grpc.ClientConn {
	t.Helper()
	uploads, err := storage.NewUploads(t.TempDir(), maxUpload)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	tr := New(0, uploads, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis, h) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return conn
}

func TestHealth(t *testing.T) {
	conn := dial(t, 0, fakeHandler{})
	client := healthpb.NewHealthClient(conn)

	resp, err := client.Check(t.Context(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestProcess(t *testing.T) {
	var saved []message.File
	conn := dial(t, 0, fakeHandler{handle: func(_ context.Context, req *message.Request) *message.Response {
		saved = req.Files
		if assert.Len(t, req.Files, 1) {
			data, err := os.ReadFile(req.Files[0].Path)
			assert.NoError(t, err)
			assert.Equal(t, "hello", string(data))
			assert.Equal(t, ".txt", req.Files[0].Ext)
		}
		return &message.Response{Success: true, OutputPath: "text_to_speech_0123abcd.wav", FunctionUsed: catalog.TextToSpeech}
	}})

	var resp message.Response
	err := conn.Invoke(t.Context(), ProcessMethod,
		&ProcessRequest{Prompt: "read aloud", Files: []Upload{{Name: "note.txt", Data: []byte("hello")}}},
		&resp, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, catalog.TextToSpeech, resp.FunctionUsed)
	assert.Equal(t, "text_to_speech_0123abcd.wav", resp.OutputPath)

	require.Len(t, saved, 1)
	assert.NoFileExists(t, saved[0].Path)
}

func TestProcessErrors(t *testing.T) {
	conn := dial(t, 3, fakeHandler{handle: func(context.Context, *message.Request) *message.Response {
		t.Error("handler must not run")
		return &message.Response{}
	}})

	var resp message.Response
	err := conn.Invoke(t.Context(), ProcessMethod, &ProcessRequest{Prompt: "  "}, &resp, grpc.CallContentSubtype("json"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = conn.Invoke(t.Context(), ProcessMethod,
		&ProcessRequest{Prompt: "compress", Files: []Upload{{Name: "a.png", Data: []byte("too big")}}},
		&resp, grpc.CallContentSubtype("json"))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestResolve(t *testing.T) {
	conn := dial(t, 0, fakeHandler{})

	var call message.Call
	err := conn.Invoke(t.Context(), ResolveMethod,
		&ResolveRequest{Prompt: "replace 'foo' with 'bar'", Files: []string{"site.zip"}},
		&call, grpc.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, catalog.ReplaceText, call.FunctionName)
	assert.Equal(t, message.StrategyFallback, call.Strategy)
}
