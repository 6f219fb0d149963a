// Package message defines the core data types flowing through the proagent pipeline.
package message

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Strategy names the resolution tier that produced a Call.
type Strategy string

const (
	// StrategyReasoning means the reasoning service produced the call.
	StrategyReasoning Strategy = "reasoning"

	// StrategyFallback means the deterministic keyword resolver produced the call.
	StrategyFallback Strategy = "fallback"
)

// File is an uploaded file as handed over by the file collaborator.
// The pipeline only reads Ext and existence; content is read by the
// transformation that needs it.
type File struct {
	// Path is the saved location (absolute or relative to the working directory).
	Path string `json:"path"`

	// Ext is the lower-case extension including the dot (e.g., ".zip").
	Ext string `json:"ext"`
}

// NewFile builds a File and infers its extension from the path.
func NewFile(path string) File {
	return File{Path: path, Ext: strings.ToLower(filepath.Ext(path))}
}

// NewFiles converts a list of paths into Files, preserving order.
func NewFiles(paths []string) []File {
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		files = append(files, NewFile(p))
	}
	return files
}

// Exists reports whether the file is present on disk.
func (f File) Exists() bool {
	info, err := os.Stat(f.Path)
	return err == nil && !info.IsDir()
}

// Paths returns the paths of the given files.
func Paths(files []File) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths
}

// Extensions returns the extensions of the given files in order.
func Extensions(files []File) []string {
	exts := make([]string, 0, len(files))
	for _, f := range files {
		if f.Ext != "" {
			exts = append(exts, f.Ext)
		}
	}
	return exts
}

// Call is a structured, executable action produced by resolution.
type Call struct {
	// FunctionName is an operation id from the trigger catalog.
	FunctionName string `json:"function_name"`

	// Parameters holds scalar parameter values keyed by name.
	Parameters Params `json:"parameters"`

	// Confidence is the resolution certainty in [0,1]. Informational only.
	Confidence float64 `json:"confidence"`

	// Strategy records which resolution tier produced the call.
	Strategy Strategy `json:"strategy"`

	// Degraded is set when the reasoning service failed and the fallback was used.
	Degraded bool `json:"degraded,omitempty"`

	// DegradedReason explains why the reasoning tier was abandoned.
	DegradedReason string `json:"degraded_reason,omitempty"`

	// Substitution records a function name proposed by the reasoning service
	// that was replaced by the fallback result.
	Substitution string `json:"substitution,omitempty"`
}

// Request is one prompt plus its uploaded files.
type Request struct {
	// ID is a unique identifier for this request (UUID).
	ID string `json:"id"`

	// Prompt is the free-form instruction.
	Prompt string `json:"prompt"`

	// Files are the already-saved uploads.
	Files []File `json:"files,omitempty"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`
}

// Response is the only shape the pipeline returns to callers.
//
// On success OutputPath and FunctionUsed are set and ErrorKind is empty.
// On failure ErrorKind and Message are set and OutputPath is empty.
type Response struct {
	RequestID    string   `json:"request_id"`
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	OutputPath   string   `json:"result_file_path,omitempty"`
	FunctionUsed string   `json:"function_used,omitempty"`
	Confidence   float64  `json:"confidence,omitempty"`
	Strategy     Strategy `json:"strategy,omitempty"`
	Degraded     bool     `json:"degraded,omitempty"`

	// Metadata is the operation-specific result metadata.
	Metadata map[string]any `json:"metadata,omitempty"`

	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorDetails string `json:"error_details,omitempty"`
}
