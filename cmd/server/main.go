// Plain server entry point: boots the application with no CLI layer.
// Most deployments use `saydalia serve` instead (cmd/saydalia).
package main

import (
	"log"

	"github.com/saydalia/saydalia/internal/server"
)

func main() {
	if err := server.Start(); err != nil {
		log.Fatal(err)
	}
}
