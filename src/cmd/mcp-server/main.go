// Package main provides the MCP server entry point for runbridge. The
// server exposes the document archive over the Model Context Protocol, so
// an agent can browse archived runs and their document streams.
package main

import (
	"fmt"
	"log"
	"os"

	"runbridge/src/mcp"
	"runbridge/src/store"
)

func main() {
	dsn := os.Getenv("RUNBRIDGE_POSTGRES_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: RUNBRIDGE_POSTGRES_DSN environment variable is required")
		os.Exit(1)
	}

	st, err := store.NewPostgresStore(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer st.Close()

	// Run server over stdin/stdout (stdio transport)
	server := mcp.NewServer(st)
	if err := server.Run(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
