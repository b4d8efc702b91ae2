// Package camunda owns the connection to the Zeebe gateway: one probed
// client handle shared by every worker, with broker failures mapped onto
// the shared error codes. Retrying a failed dial is the caller's concern.
package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"trip-context-engine/internal/common/errors"
)

// Config describes how to reach the Zeebe gateway.
type Config struct {
	GatewayAddress string
	UsePlaintext   bool
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	return c
}

// Client is a shared handle on the gateway. Workers poll through its raw
// Zeebe client; Close belongs to whoever called Connect.
type Client struct {
	zbc zbc.Client
	cfg Config
}

// Connect dials the gateway and sends one topology request to verify it
// is reachable before handing the client out.
func Connect(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	zc, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.GatewayAddress,
		UsePlaintextConnection: cfg.UsePlaintext,
	})
	if err != nil {
		return nil, fmt.Errorf("zeebe client setup: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if _, err := zc.NewTopologyCommand().Send(ctx); err != nil {
		zc.Close()
		return nil, mapBrokerError("connect", cfg.GatewayAddress, err)
	}

	return &Client{zbc: zc, cfg: cfg}, nil
}

// Raw exposes the underlying Zeebe client for opening job workers.
func (c *Client) Raw() zbc.Client {
	return c.zbc
}

// Close releases the gRPC connection. Stop all workers first.
func (c *Client) Close() error {
	return c.zbc.Close()
}

// HealthCheck asks the broker for its topology. Backs the readiness
// endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	if _, err := c.zbc.NewTopologyCommand().Send(ctx); err != nil {
		return mapBrokerError("topology", c.cfg.GatewayAddress, err)
	}
	return nil
}

// mapBrokerError folds a gRPC failure into the shared error codes. The
// commands this package sends fail in exactly two shapes: the broker took
// too long, or it is unreachable.
func mapBrokerError(op, gateway string, err error) error {
	wrapped := fmt.Errorf("zeebe %s against %s: %w", op, gateway, err)

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return errors.NewTimeoutError("zeebe", wrapped)
	}
	return errors.NewExternalServiceError("zeebe", wrapped)
}
