package transform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/proagent/internal/message"
)

type stub struct {
	name string
	fn   func(ctx context.Context, params message.Params, files []message.File) (*Result, error)
}

func (s stub) Name() string { return s.name }

func (s stub) Execute(ctx context.Context, params message.Params, files []message.File) (*Result, error) {
	return s.fn(ctx, params, files)
}

func TestRegistryUnknownFunction(t *testing.T) {
	r := NewRegistry()
	_, err := r.Execute(context.Background(), "nope", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.Equal(t, KindUnknownFunction, KindOf(err))
}

func TestRegistryReturnsResultUnchanged(t *testing.T) {
	want := &Result{Outputs: []string{"a.txt", "b.txt"}, Metadata: map[string]any{"n": 1}}
	r := NewRegistry(stub{name: "op", fn: func(context.Context, message.Params, []message.File) (*Result, error) {
		return want, nil
	}})

	got, err := r.Execute(context.Background(), "op", nil, nil)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, "a.txt", got.Primary())
	assert.Equal(t, []string{"op"}, r.Names())
}

func TestRegistryClassifiesFailures(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, message.Params, []message.File) (*Result, error)
		kind Kind
	}{
		{"plain error", func(context.Context, message.Params, []message.File) (*Result, error) {
			return nil, errors.New("boom")
		}, KindProcessingFailure},
		{"invalid input kept", func(context.Context, message.Params, []message.File) (*Result, error) {
			return nil, InvalidInput("", "missing file")
		}, KindInvalidInput},
		{"panic", func(context.Context, message.Params, []message.File) (*Result, error) {
			panic("kaboom")
		}, KindProcessingFailure},
		{"no outputs", func(context.Context, message.Params, []message.File) (*Result, error) {
			return &Result{}, nil
		}, KindProcessingFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(stub{name: "op", fn: tt.fn})
			res, err := r.Execute(context.Background(), "op", nil, nil)
			assert.Nil(t, res)
			var te *Error
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.kind, te.Kind)
			assert.Equal(t, "op", te.Op)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	err := ProcessingFailure("compress_image", errors.New("bad header"), "decoding %s", "a.png")
	assert.Equal(t, "compress_image: decoding a.png: bad header", err.Error())
	assert.ErrorIs(t, err, ErrProcessingFailure)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestRequireFiles(t *testing.T) {
	dir := t.TempDir()
	zip := filepath.Join(dir, "a.zip")
	require.NoError(t, os.WriteFile(zip, []byte("x"), 0o644))

	files := message.NewFiles([]string{filepath.Join(dir, "b.txt"), zip, filepath.Join(dir, "missing.zip")})
	got, err := RequireFiles("extract_files", files, ".zip")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, zip, got[0].Path)

	_, err = RequireFiles("extract_files", message.NewFiles([]string{filepath.Join(dir, "b.txt")}), ".zip")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = RequireFiles("extract_files", message.NewFiles([]string{filepath.Join(dir, "missing.zip")}), ".zip")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
