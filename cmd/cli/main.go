// Command cli drives a running tiendita server from the terminal: start an
// interview, answer questions, inspect the transcript and pull reports.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var serverAddr string

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defaultAddr := os.Getenv("TIENDITA_CLI_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:4000"
	}
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", defaultAddr, "base URL of the tiendita server")
	rootCmd.AddCommand(startCmd, answerCmd, transcriptCmd, summaryCmd, recommendCmd, resetCmd)
}

var rootCmd = &cobra.Command{ //nolint:exhaustruct
	Use:  "tiendita-cli",
	Long: `Command line utilities for driving a tiendita interview server.`,
}

var startCmd = &cobra.Command{ //nolint:exhaustruct
	Use:   "start",
	Short: "Start (or restart) the interview",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/api/start-interview", nil)
	},
}

var answerCmd = &cobra.Command{ //nolint:exhaustruct
	Use:   "answer [text]",
	Short: "Answer the active question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload := map[string]string{"message": joinArgs(args)}
		return call(cmd.OutOrStdout(), http.MethodPost, "/api/chat", payload)
	},
}

var transcriptCmd = &cobra.Command{ //nolint:exhaustruct
	Use:   "transcript",
	Short: "Print the conversation so far",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/api/conversation-history", nil)
	},
}

var summaryCmd = &cobra.Command{ //nolint:exhaustruct
	Use:   "summary",
	Short: "Summarize the interview into business insights",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return call(cmd.OutOrStdout(), http.MethodPost, "/api/summarize", nil)
	},
}

var recommendCmd = &cobra.Command{ //nolint:exhaustruct
	Use:   "recommend",
	Short: "Generate inventory purchase recommendations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return call(cmd.OutOrStdout(), http.MethodGet, "/api/inventory-recommendations", nil)
	},
}

var resetCmd = &cobra.Command{ //nolint:exhaustruct
	Use:   "reset",
	Short: "Discard the interview state and transcript",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return call(cmd.OutOrStdout(), http.MethodPost, "/api/reset", nil)
	},
}

// call performs one request against the server and pretty-prints the JSON body.
func call(out io.Writer, method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, serverAddr+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("call server: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var pretty bytes.Buffer
	if err = json.Indent(&pretty, raw, "", "  "); err != nil {
		// Not JSON, print as-is.
		_, _ = out.Write(raw)
	} else {
		_, _ = pretty.WriteTo(out)
	}
	_, _ = fmt.Fprintln(out)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func joinArgs(args []string) string {
	joined := args[0]
	for _, arg := range args[1:] {
		joined += " " + arg
	}
	return joined
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
