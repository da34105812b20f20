// main is the entry point for the pmpulse CLI.
package main

import (
	"github.com/huangsam/pmpulse/cmd"
	"github.com/huangsam/pmpulse/internal/contract"
	"github.com/huangsam/pmpulse/internal/iostore"
)

func main() {
	cmd.SetStoreManager(iostore.Manager)
	err := cmd.Execute()

	// Flush queued audit runs before exiting
	iostore.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}

	if err != nil {
		contract.LogFatal("Command failed", err)
	}
}
