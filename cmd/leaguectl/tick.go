package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/gridiron-service/internal/orchestrator"
)

const maxErrorBody = 512

func runTick(ctx context.Context, out io.Writer, baseURL, secret string, timeout time.Duration) error {
	if secret == "" {
		return fmt.Errorf("tick secret is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/tick", nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting tick: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("tick failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var action orchestrator.Action
	if err := json.NewDecoder(resp.Body).Decode(&action); err != nil {
		return fmt.Errorf("decoding tick response: %w", err)
	}
	fmt.Fprintln(out, describe(action))
	return nil
}

func describe(a orchestrator.Action) string {
	var b strings.Builder
	b.WriteString(string(a.Kind))
	if a.SeasonID != "" {
		fmt.Fprintf(&b, " season=%s", a.SeasonID)
	}
	if a.Week > 0 {
		fmt.Fprintf(&b, " week=%d", a.Week)
	}
	if a.GameID != "" {
		fmt.Fprintf(&b, " game=%s", a.GameID)
	}
	if a.CompletedGameID != "" {
		fmt.Fprintf(&b, " completed=%s", a.CompletedGameID)
	}
	if a.Reason != "" {
		fmt.Fprintf(&b, " reason=%s", a.Reason)
	}
	if a.Message != "" {
		fmt.Fprintf(&b, " (%s)", a.Message)
	}
	return b.String()
}
