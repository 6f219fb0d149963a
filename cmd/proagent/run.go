package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nadzzz/proagent/internal/config"
	"github.com/nadzzz/proagent/internal/message"
)

var inputFiles []string

var resolveCmd = &cobra.Command{
	Use:   "resolve PROMPT",
	Short: "Resolve a prompt to a call and print it without running anything",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildCLI()
		if err != nil {
			return err
		}
		call := a.dispatcher.Resolve(cmd.Context(), strings.Join(args, " "), message.NewFiles(inputFiles))
		return printJSON(cmd.OutOrStdout(), call)
	},
}

var runCmd = &cobra.Command{
	Use:   "run PROMPT",
	Short: "Resolve a prompt and run it once against local files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildCLI()
		if err != nil {
			return err
		}
		resp := a.dispatcher.Handle(cmd.Context(), &message.Request{
			Prompt: strings.Join(args, " "),
			Files:  message.NewFiles(inputFiles),
		})

		body := struct {
			*message.Response
			OutputFile string `json:"output_file,omitempty"`
		}{Response: resp}
		if resp.Success {
			body.OutputFile = a.out.Path(resp.OutputPath)
		}
		if err := printJSON(cmd.OutOrStdout(), body); err != nil {
			return err
		}
		if !resp.Success {
			return errors.New(resp.Message)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, runCmd} {
		c.Flags().StringArrayVarP(&inputFiles, "file", "f", nil, "input file (repeatable)")
	}
}

// buildCLI wires the pipeline for one-shot commands. Logs go to stderr so
// that stdout carries only JSON.
func buildCLI() (*app, error) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.New(config.NewHandler(cfg.Logging, os.Stderr))
	slog.SetDefault(logger)
	return build(cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
