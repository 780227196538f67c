package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/firebreak/pkg/adapters/memory"
	"github.com/aretw0/firebreak/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("run-%d", i)
		_ = mgr.Save(ctx, id, domain.NewCheckpoint(id, domain.NewSession("m"), "start"))
		_ = mgr.Delete(ctx, id)
	}

	if n := len(mgr.locks); n != 0 {
		t.Errorf("Memory leak detected: %d locks remaining after Delete", n)
	}
}
