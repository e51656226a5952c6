// Command journal inspects the connection engine offline: it loads the local
// content tree and prints resolved connections, thread pairs and scatter
// layouts as JSON.
package main

import (
	"fmt"
	"os"

	"studio-journal/backend/pkg/logger"
)

func main() {
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
