// Package http implements the HTTP transport for proagent.
//
// It exposes a multipart REST API: uploads plus a prompt go in, a response
// describing the produced artifact comes out, and artifacts are fetched
// from /download.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/proagent/internal/catalog"
	"github.com/nadzzz/proagent/internal/message"
	"github.com/nadzzz/proagent/internal/storage"
	"github.com/nadzzz/proagent/internal/transform"
	"github.com/nadzzz/proagent/internal/transport"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port     int
	uploads  *storage.Uploads
	out      *storage.OutputArea
	catalog  *catalog.Catalog
	swagger  bool
	maxBytes int64
	server   *http.Server
}

// Options configures the HTTP transport.
type Options struct {
	Port    int
	Uploads *storage.Uploads
	Output  *storage.OutputArea
	Catalog *catalog.Catalog

	// Swagger serves the OpenAPI UI under /swagger/.
	Swagger bool

	// MaxRequestBytes caps a whole request body. Zero means unlimited.
	MaxRequestBytes int64
}

// New creates a new HTTP transport.
func New(opts Options) *Transport {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	return &Transport{
		port:     opts.Port,
		uploads:  opts.Uploads,
		out:      opts.Output,
		catalog:  cat,
		swagger:  opts.Swagger,
		maxBytes: opts.MaxRequestBytes,
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Routes returns the HTTP handler serving the API for h.
func (t *Transport) Routes(h transport.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /process", func(w http.ResponseWriter, r *http.Request) {
		t.handleProcess(w, r, h)
	})
	mux.HandleFunc("POST /resolve", func(w http.ResponseWriter, r *http.Request) {
		t.handleResolve(w, r, h)
	})
	mux.HandleFunc("GET /functions", t.handleFunctions)
	mux.HandleFunc("GET /download/{path...}", t.handleDownload)

	if t.swagger {
		mux.Handle("GET /swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}
	return mux
}

// Listen starts the HTTP server and routes incoming requests to h.
func (t *Transport) Listen(ctx context.Context, h transport.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Routes(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// ProcessResponse is the /process reply body.
type ProcessResponse struct {
	*message.Response

	// DownloadURL fetches the primary artifact. Empty on failure.
	DownloadURL string `json:"download_url,omitempty"`
}

// handleProcess processes a POST /process request.
//
// @Summary     Run a prompt against uploaded files
// @Description Saves the uploaded files, resolves the prompt to one operation and runs it.
// @Description The response names the operation used and the primary artifact, or carries an error kind.
// @Tags        process
// @Accept      multipart/form-data
// @Produce     json
// @Param       prompt  formData  string  true   "Free-form instruction"
// @Param       files   formData  file    false  "Input files (repeatable)"
// @Success     200  {object}  ProcessResponse  "Operation succeeded"
// @Failure     400  {object}  ProcessResponse  "Invalid input"
// @Failure     413  {string}  string           "Upload too large"
// @Failure     500  {object}  ProcessResponse  "Processing failure"
// @Router      /process [post]
func (t *Transport) handleProcess(w http.ResponseWriter, r *http.Request, h transport.Handler) {
	if t.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, t.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	prompt := strings.TrimSpace(r.FormValue("prompt"))
	if prompt == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}

	files, err := t.saveUploads(r)
	defer t.uploads.Discard(files)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		slog.Error("saving uploads failed", "error", err)
		http.Error(w, "saving uploads: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := h.Handle(r.Context(), &message.Request{
		Prompt:    prompt,
		Files:     files,
		Timestamp: time.Now(),
	})

	body := ProcessResponse{Response: resp}
	if resp.Success && resp.OutputPath != "" {
		body.DownloadURL = "/download/" + escapePath(resp.OutputPath)
	}
	writeJSON(w, statusFor(resp), body)
}

func (t *Transport) saveUploads(r *http.Request) ([]message.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var files []message.File
	for _, fh := range r.MultipartForm.File["files"] {
		src, err := fh.Open()
		if err != nil {
			return files, fmt.Errorf("opening %q: %w", fh.Filename, err)
		}
		f, err := t.uploads.Save(fh.Filename, src)
		src.Close()
		if err != nil {
			return files, err
		}
		files = append(files, f)
	}
	return files, nil
}

// ResolveRequest is the /resolve body. Files are names only; they are used
// for their extensions.
type ResolveRequest struct {
	Prompt string   `json:"prompt"`
	Files  []string `json:"files,omitempty"`
}

// handleResolve processes a POST /resolve request.
//
// @Summary     Resolve a prompt without running it
// @Tags        process
// @Accept      json
// @Produce     json
// @Param       request  body      ResolveRequest  true  "Prompt and optional file names"
// @Success     200      {object}  message.Call
// @Failure     400      {string}  string  "Invalid request body"
// @Router      /resolve [post]
func (t *Transport) handleResolve(w http.ResponseWriter, r *http.Request, h transport.Handler) {
	var req ResolveRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "prompt is required", http.StatusBadRequest)
		return
	}
	call := h.Resolve(r.Context(), req.Prompt, message.NewFiles(req.Files))
	writeJSON(w, http.StatusOK, call)
}

// handleFunctions processes a GET /functions request.
//
// @Summary     List supported operations
// @Tags        catalog
// @Produce     json
// @Success     200  {array}  catalog.Entry
// @Router      /functions [get]
func (t *Transport) handleFunctions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, t.catalog.Entries())
}

// handleDownload processes a GET /download/{path} request.
//
// @Summary     Download an artifact
// @Tags        artifacts
// @Produce     octet-stream
// @Param       path  path  string  true  "Artifact path relative to the output area"
// @Success     200
// @Failure     400  {string}  string  "Invalid path"
// @Failure     404  {string}  string  "Not found"
// @Router      /download/{path} [get]
func (t *Transport) handleDownload(w http.ResponseWriter, r *http.Request) {
	full, err := t.out.Resolve(r.PathValue("path"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, err := os.Open(full)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", info.Name()))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// statusFor maps a pipeline response to an HTTP status.
func statusFor(resp *message.Response) int {
	if resp.Success {
		return http.StatusOK
	}
	switch transform.Kind(resp.ErrorKind) {
	case transform.KindInvalidInput:
		return http.StatusBadRequest
	case transform.KindUnknownFunction:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func escapePath(rel string) string {
	parts := strings.Split(path.Clean(rel), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
