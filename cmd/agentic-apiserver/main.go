// Package main is the entry point for the Agentic API server.
package main

import (
	_ "go.uber.org/automaxprocs/maxprocs"

	"github.com/agentic-hq/agentic/internal/apiserver"
)

func main() {
	apiserver.NewApp().Run()
}
