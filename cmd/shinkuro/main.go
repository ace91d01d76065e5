// Package main is the entry point for the shinkuro prompt server.
//
// shinkuro loads markdown prompts from a local folder or a cached git
// checkout, then answers Model Context Protocol requests on stdin/stdout
// until the client disconnects. Startup is sequential:
//
// 1. Load .env, flags, environment and the optional config file
// 2. Resolve the prompt source, cloning or refreshing the cache if remote
// 3. Build the prompt catalog (any parse failure aborts startup)
// 4. Serve the protocol until end of input or shutdown
//
// Logs never go to stdout, which carries the protocol.
package main

import (
	"os"

	"shinkuro/internal/logging"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		logging.Error("shinkuro failed", "error", err)
		os.Exit(1)
	}
}
