// Command intake fills a patient intake form from free text using a local
// chat-completion model.
//
// Usage:
//
//	intake extract [file|-] [--format text|markdown|html|url] [--save] [--attempts N]
//	intake serve [--addr host:port]
//	intake mcp
//	intake schema
//
// Settings come from an optional YAML file (--config), then .env and the
// environment, then built-in defaults.
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "intake:", err)
		os.Exit(1)
	}
}
