package httpengine

import "time"

const (
	Name = "http"

	simulatePath       = "/simulate"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 512
)
