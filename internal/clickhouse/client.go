package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/rs/zerolog/log"

	"github.com/SteelMorgan/logslice/internal/retry"
)

// Client wraps a ClickHouse connection used by the optional line sink.
type Client struct {
	conn     clickhouse.Conn
	retryCfg retry.Config
}

// NewClient connects to ClickHouse and verifies the connection.
func NewClient(host string, port int, database string) (*Client, error) {
	return NewClientWithRetry(host, port, database, retry.DefaultConfig())
}

// NewClientWithRetry connects with a custom retry configuration.
func NewClientWithRetry(host string, port int, database string, retryCfg retry.Config) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: "default",
			Password: "",
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	ctx := context.Background()
	if err := retry.Do(ctx, retryCfg, func() error {
		return conn.Ping(ctx)
	}); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	log.Info().
		Str("host", host).
		Int("port", port).
		Str("database", database).
		Msg("Connected to ClickHouse")

	return &Client{conn: conn, retryCfg: retryCfg}, nil
}

// Conn returns the underlying ClickHouse connection.
func (c *Client) Conn() clickhouse.Conn {
	return c.conn
}

// Exec runs a statement (DDL, mostly) with retry on transient failures.
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) error {
	return retry.Do(ctx, c.retryCfg, func() error {
		return c.conn.Exec(ctx, query, args...)
	})
}

// Close closes the connection.
func (c *Client) Close() error {
	log.Info().Msg("Closing ClickHouse connection")
	return c.conn.Close()
}
