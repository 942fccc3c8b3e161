package api

import (
	"context"
	"time"

	"github.com/trendwatch/trendwatch/app/config"
	"github.com/trendwatch/trendwatch/app/tasks"
)

// RunnerInterface is the slice of the pipeline runner the HTTP layer
// needs.
type RunnerInterface interface {
	Run(ctx context.Context) *tasks.RunResult
	LastResult() *tasks.RunResult
	GetStats() tasks.Stats
}

var _ RunnerInterface = (*tasks.Runner)(nil)

type Handler struct {
	runner    RunnerInterface
	config    *config.Config
	startedAt time.Time
}
