package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/resolve"
	"github.com/nadzzz/proagent/internal/transform"
)

type stub struct {
	name string
	fn   func(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error)
}

func (s stub) Name() string { return s.name }

func (s stub) Execute(ctx context.Context, params message.Params, files []message.File) (*transform.Result, error) {
	return s.fn(ctx, params, files)
}

type fixedResolver message.Call

func (f fixedResolver) Resolve(context.Context, string, []message.File) message.Call {
	return message.Call(f)
}

func TestHandleSuccess(t *testing.T) {
	var gotParams message.Params
	reg := transform.NewRegistry(stub{name: catalog.CompressImage, fn: func(_ context.Context, p message.Params, files []message.File) (*transform.Result, error) {
		gotParams = p
		require.Len(t, files, 1)
		return &transform.Result{
			Outputs:  []string{"compressed_abcd1234.jpg", "other.jpg"},
			Metadata: map[string]any{"compression_ratio": 42.0},
		}, nil
	}})
	d := New(resolve.New(nil), reg, nil)

	resp := d.Handle(t.Context(), &message.Request{
		Prompt: "compress this photo to 60% quality",
		Files:  message.NewFiles([]string{"/tmp/photo.jpg"}),
	})

	require.True(t, resp.Success, resp.Message)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, catalog.CompressImage, resp.FunctionUsed)
	assert.Equal(t, "compressed_abcd1234.jpg", resp.OutputPath)
	assert.Equal(t, message.StrategyFallback, resp.Strategy)
	assert.True(t, resp.Degraded)
	assert.InDelta(t, resolve.ConfidenceMatched, resp.Confidence, 1e-9)
	assert.Empty(t, resp.ErrorKind)
	assert.Equal(t, 42.0, resp.Metadata["compression_ratio"])
	assert.Equal(t, []string{"compressed_abcd1234.jpg", "other.jpg"}, resp.Metadata["outputs"])
	assert.Equal(t, resolve.ReasonUnavailable, resp.Metadata["degraded_reason"])
	assert.Equal(t, 60, gotParams["quality"])
}

func TestHandleFailureHasNoOutput(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind transform.Kind
		msg  string
	}{
		{"invalid input", transform.InvalidInput(catalog.WordToPDF, "no .docx file provided"), transform.KindInvalidInput, "no .docx file provided"},
		{"processing", transform.ProcessingFailure(catalog.WordToPDF, errors.New("zip: not a valid zip file"), "converting report.docx"), transform.KindProcessingFailure, "converting report.docx"},
		{"unstructured", errors.New("disk on fire"), transform.KindProcessingFailure, "transformation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := transform.NewRegistry(stub{name: catalog.WordToPDF, fn: func(context.Context, message.Params, []message.File) (*transform.Result, error) {
				return &transform.Result{Outputs: []string{"partial.pdf"}}, tt.err
			}})
			d := New(fixedResolver{FunctionName: catalog.WordToPDF, Confidence: 0.9, Strategy: message.StrategyReasoning}, reg, nil)

			resp := d.Handle(t.Context(), &message.Request{ID: "req-1", Prompt: "convert"})
			assert.False(t, resp.Success)
			assert.Equal(t, "req-1", resp.RequestID)
			assert.Empty(t, resp.OutputPath)
			assert.Nil(t, resp.Metadata)
			assert.Equal(t, string(tt.kind), resp.ErrorKind)
			assert.Equal(t, tt.msg, resp.Message)
			assert.NotEmpty(t, resp.ErrorDetails)
		})
	}
}

func TestHandleUnknownFunction(t *testing.T) {
	d := New(fixedResolver{FunctionName: "summon_dragon"}, transform.NewRegistry(), nil)

	resp := d.Handle(t.Context(), &message.Request{Prompt: "x"})
	assert.False(t, resp.Success)
	assert.Equal(t, string(transform.KindUnknownFunction), resp.ErrorKind)
	assert.Empty(t, resp.OutputPath)
}

func TestHandleIgnoresCallerCancellation(t *testing.T) {
	reg := transform.NewRegistry(stub{name: catalog.ExtractFiles, fn: func(ctx context.Context, _ message.Params, _ []message.File) (*transform.Result, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &transform.Result{Outputs: []string{"summary.txt"}}, nil
	}})
	d := New(fixedResolver{FunctionName: catalog.ExtractFiles}, reg, nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	resp := d.Handle(ctx, &message.Request{Prompt: "unzip"})
	assert.True(t, resp.Success, resp.ErrorDetails)
	assert.Equal(t, "summary.txt", resp.OutputPath)
}

func TestHandleNilRequest(t *testing.T) {
	d := New(resolve.New(nil), transform.NewRegistry(), nil)
	resp := d.Handle(t.Context(), nil)
	assert.NotEmpty(t, resp.RequestID)
	assert.False(t, resp.Success)
}

func TestResolveDoesNotExecute(t *testing.T) {
	called := false
	reg := transform.NewRegistry(stub{name: catalog.ExtractFiles, fn: func(context.Context, message.Params, []message.File) (*transform.Result, error) {
		called = true
		return &transform.Result{Outputs: []string{"x"}}, nil
	}})
	d := New(resolve.New(nil), reg, nil)

	call := d.Resolve(t.Context(), "please unzip this archive", nil)
	assert.Equal(t, catalog.ExtractFiles, call.FunctionName)
	assert.False(t, called)
}
