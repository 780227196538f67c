/*
Package firebreak is a checkpointed workflow engine that walks a household through a bushfire survival plan.

A run moves over a fixed graph of stages. Inference stages ask a structured-inference service to assess what is known; interaction stages put the follow-up questions and choices to the user. After every stage the accumulated session is merged, the next stage is resolved and a checkpoint is persisted, so any run can be suspended and resumed from where it stopped.

# Key Features

  - Durable Execution: a checkpoint after every stage; interrupted or failed runs resume at the same stage.
  - Hexagonal Architecture: stores, inference backends and prompters are ports with swappable adapters.
  - Deterministic Routing: each stage has one outgoing edge, either static or routed on a classification or choice.
  - Offline Mode: a scripted inferer runs the whole graph without a network.

# Usage

	package main

	import (
		"context"
		"log"
		"os"

		"github.com/aretw0/firebreak"
		"github.com/aretw0/firebreak/pkg/adapters/file"
		"github.com/aretw0/firebreak/pkg/runner"
	)

	func main() {
		store := file.New(".firebreak/runs")
		console := runner.NewConsole(os.Stdin, os.Stdout)
		defer console.Close()

		planner, err := firebreak.New(store, myInferer, console)
		if err != nil {
			log.Fatal(err)
		}

		cp, err := planner.Start(context.Background(), "conversation_1", "Protect my family")
		if err != nil {
			log.Fatal(err)
		}
		log.Println("run ended:", cp.Status)
	}
*/
package firebreak
