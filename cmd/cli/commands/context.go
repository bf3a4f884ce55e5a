package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/internal/config"
	"github.com/jakechorley/flightguard/internal/server"
	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/metrics"
	"github.com/jakechorley/flightguard/pkg/realtime"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg       *config.Config
	Store     server.Store
	Auth      authz.Authorizer
	Publisher realtime.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Ctx       context.Context
}
