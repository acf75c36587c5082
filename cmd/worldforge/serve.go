package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"worldforge/internal/mcp"
	"worldforge/internal/store"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	var noStore bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(noStore)
		},
	}
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Serve only the conversion tools, without a database")
	return cmd
}

func runServe(noStore bool) error {
	ctx := context.Background()

	if noStore {
		slog.Info("serving conversion tools only")
		return mcp.NewServer(nil, version).Run(ctx, &sdk.StdioTransport{})
	}

	return withStore(ctx, func(db store.Store) error {
		slog.Info("serving world-book tools")
		return mcp.NewServer(db, version).Run(ctx, &sdk.StdioTransport{})
	})
}
