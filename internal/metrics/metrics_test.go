package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/firebreak/pkg/domain"
)

func TestHooks_Record(t *testing.T) {
	c := New(false)
	h := c.Hooks()
	ctx := context.Background()

	h.OnStageEnter(ctx, &domain.StageEvent{Stage: "classify_risk"})
	h.OnStageLeave(ctx, &domain.StageEvent{Stage: "classify_risk", Duration: 2 * time.Second})
	h.OnStageEnter(ctx, &domain.StageEvent{Stage: "classify_risk"})
	h.OnStageLeave(ctx, &domain.StageEvent{Stage: "classify_risk", Err: errors.New("boom")})
	h.OnRoute(ctx, &domain.RouteEvent{From: "classify_risk", To: "classify_risk", Fallback: true})
	h.OnCheckpoint(ctx, &domain.CheckpointEvent{Status: domain.StatusFailed})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.StageVisits.WithLabelValues("classify_risk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StageErrors.WithLabelValues("classify_risk")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Routes.WithLabelValues("classify_risk", "classify_risk", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Checkpoints.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.StageDuration))
}

func TestHandler(t *testing.T) {
	c := New(true)
	c.Hooks().OnStageEnter(context.Background(), &domain.StageEvent{Stage: "show_plan"})

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `firebreak_stage_visits_total{stage="show_plan"} 1`)
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestCombine(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnRoute: func(context.Context, *domain.RouteEvent) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnRoute:      func(context.Context, *domain.RouteEvent) { order = append(order, "b") },
		OnCheckpoint: func(context.Context, *domain.CheckpointEvent) { order = append(order, "b-cp") },
	}

	h := Combine(a, b)
	h.OnRoute(context.Background(), &domain.RouteEvent{})
	h.OnCheckpoint(context.Background(), &domain.CheckpointEvent{})
	h.OnStageEnter(context.Background(), &domain.StageEvent{})

	assert.Equal(t, []string{"a", "b", "b-cp"}, order)
}
