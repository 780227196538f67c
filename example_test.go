package firebreak_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/firebreak"
	"github.com/aretw0/firebreak/internal/bushfire"
	"github.com/aretw0/firebreak/internal/testutils"
	"github.com/aretw0/firebreak/pkg/adapters/memory"
)

// ExampleNew_offline runs the whole planning graph against the scripted
// offline inferer and an in-memory store.
func ExampleNew_offline() {
	prompter := testutils.NewPrompter(
		"3775, Kinglake", // risk question
		"Dense bush",     // risk question
		"yes",            // continue with plan?
		"No pump",        // defence question
		"leave",          // leave or stay?
		"My sister's place in town",
	)

	planner, err := firebreak.New(memory.NewStore(), bushfire.Offline(), prompter)
	if err != nil {
		log.Fatal(err)
	}

	cp, err := planner.Start(context.Background(), "conversation_1", "Keep my family safe")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(cp.Status)
	fmt.Println(cp.Session.FinalArtifact[0])
	// Output:
	// completed
	// # Bushfire Survival Plan
}
