package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/graphrun/graphrun/internal/infrastructure/http/dto"
	"github.com/spf13/cobra"
)

type runOptions struct {
	GraphPath string
	NoFollow  bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit a graph for execution and stream its progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.GraphPath, "graph", "g", "", "Path to a graph submission JSON file")
	cmd.MarkFlagRequired("graph") //nolint:errcheck
	cmd.Flags().BoolVar(&opts.NoFollow, "no-follow", false, "Submit the run without streaming its events")

	return cmd
}

func runGraph(cmd *cobra.Command, root *rootFlags, opts runOptions) error {
	raw, err := os.ReadFile(opts.GraphPath)
	if err != nil {
		return fmt.Errorf("reading graph file: %w", err)
	}

	var req dto.RunSubmissionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("parsing graph file: %w", err)
	}

	submitted, err := submitRun(root.serverAddr, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run accepted: %s\n", submitted.RunID)

	if opts.NoFollow {
		return nil
	}
	return followRun(cmd, root.serverAddr, submitted.RunID)
}

func submitRun(serverAddr string, req dto.RunSubmissionRequest) (dto.RunSubmissionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return dto.RunSubmissionResponse{}, fmt.Errorf("encoding request: %w", err)
	}

	resp, err := http.Post(serverAddr+"/api/v1/runs", "application/json", bytes.NewReader(body))
	if err != nil {
		return dto.RunSubmissionResponse{}, fmt.Errorf("submitting run: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		var errResp dto.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return dto.RunSubmissionResponse{}, fmt.Errorf("server rejected run (%d): %s", resp.StatusCode, errResp.Message)
	}

	var out dto.RunSubmissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return dto.RunSubmissionResponse{}, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

// followRun opens the server-sent-events stream for a run and prints each
// event as it arrives, exiting once the run reaches a terminal state.
func followRun(cmd *cobra.Command, serverAddr, runID string) error {
	client := &http.Client{Timeout: 0}
	resp, err := client.Get(fmt.Sprintf("%s/api/v1/runs/%s/stream", serverAddr, runID))
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var eventType string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s %s\n", time.Now().Format(time.RFC3339), eventType, payload)
			if eventType == "execution.completed" || eventType == "execution.failed" {
				return nil
			}
		case line == "":
			eventType = ""
		}
	}
	return scanner.Err()
}
