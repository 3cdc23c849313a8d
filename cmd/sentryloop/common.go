package main

import (
	"context"
	"time"

	"github.com/shieldloop/sentryloop/pkg/cache"
	"github.com/shieldloop/sentryloop/pkg/clock"
	"github.com/shieldloop/sentryloop/pkg/config"
	"github.com/shieldloop/sentryloop/pkg/domain"
	"github.com/shieldloop/sentryloop/pkg/events"
	"github.com/shieldloop/sentryloop/pkg/experiment"
	"github.com/shieldloop/sentryloop/pkg/gateway"
	"github.com/shieldloop/sentryloop/pkg/memory"
	"github.com/shieldloop/sentryloop/pkg/types"
)

const shutdownTimeout = 15 * time.Second

// buildGateway constructs the process-wide Model Gateway, wrapped in a
// token-bucket rate limiter, from configuration.
func buildGateway(cfg config.GatewayConfig) types.Gateway {
	gw := gateway.New(cfg.ToGatewayConfig())
	return gateway.NewRateLimited(gw, 20, 10)
}

// checkGatewayReachable does a cheap connectivity probe so the CLI can fail
// fast with exit code 2 rather than discovering the outage mid-run.
func checkGatewayReachable(ctx context.Context, gw types.Gateway) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := gw.Embed(ctx, "sentryloop startup connectivity check")
	return err
}

// buildFactory wires the process-wide Gateway and Bus into an
// experiment.Factory, constructing a fresh Embedding Cache and Experience
// Memory per experiment so their bounds are scoped to one run.
func buildFactory(gw types.Gateway, bus *events.Bus) experiment.Factory {
	return experiment.Factory{
		Gateway: gw,
		NewMemory: func(cfg domain.ExperimentConfig) types.Memory {
			embedder := cache.New(gw, cache.WithMaxEntries(1000), cache.WithEnabled(cfg.EnableMemory))
			return memory.New(embedder, clock.Real{}, memory.DefaultConfig())
		},
		Clock: clock.Real{},
		Bus:   bus,
	}
}
