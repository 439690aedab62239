package studio

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
	"github.com/ChaseRain/coverstudio/internal/infra/limiter"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/internal/service/imagegen"
	"github.com/ChaseRain/coverstudio/internal/service/orchestrator"
	"github.com/ChaseRain/coverstudio/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	failLabels []string
	calls      int
}

func (g *stubGenerator) Generate(ctx context.Context, call imagegen.Call) (*imagegen.Image, error) {
	g.calls++
	for _, label := range g.failLabels {
		if strings.Contains(call.Prompt, label) {
			return nil, errors.New(errors.ErrCodeGenerationAPI, "model refused "+label)
		}
	}
	return &imagegen.Image{Data: []byte(fmt.Sprintf("png-%d", g.calls)), MIMEType: "image/png"}, nil
}

func newController(gen imagegen.Generator) *Controller {
	orch := orchestrator.New(gen, limiter.New(1, 0), logger.NewNop(), orchestrator.Options{Model: "m"})
	return NewController(orch, 20, logger.NewNop())
}

func req(format cover.Format) cover.GenerationRequest {
	return cover.GenerationRequest{Style: cover.StylePhotographic, Theme: cover.ThemeNature, Format: format}
}

func TestController_InitialState(t *testing.T) {
	c := newController(&stubGenerator{})
	snap := c.Snapshot()
	assert.Equal(t, orchestrator.StateIdle, snap.State)
	assert.Empty(t, snap.Images)
	_, ok := snap.Active()
	assert.False(t, ok)
}

func TestController_SuccessfulBatch(t *testing.T) {
	c := newController(&stubGenerator{})

	res, err := c.Generate(context.Background(), req(cover.FormatAll), nil)
	require.NoError(t, err)
	assert.Len(t, res.Images, 6)

	snap := c.Snapshot()
	assert.Equal(t, orchestrator.StateSucceeded, snap.State)
	assert.Len(t, snap.Images, 6)
	assert.Equal(t, 0, snap.ActiveIndex)
	assert.Empty(t, snap.Error)
	assert.Equal(t, ids(res.Images), ids(c.History()))

	require.NoError(t, c.Select(3))
	active, ok := c.Snapshot().Active()
	require.True(t, ok)
	assert.Equal(t, cover.FormatBanner, active.Format)

	assert.Error(t, c.Select(6))
	assert.Error(t, c.Select(-1))
}

func TestController_PartialBatch(t *testing.T) {
	gen := &stubGenerator{failLabels: []string{cover.FormatStory.Label(), cover.FormatPhone.Label()}}
	c := newController(gen)

	var observed []int
	_, err := c.Generate(context.Background(), req(cover.FormatAll), func(e orchestrator.ProgressEvent) {
		if e.Stage == orchestrator.StagePartial {
			observed = append(observed, len(c.Snapshot().Images))
		}
	})
	require.NoError(t, err)

	snap := c.Snapshot()
	assert.Equal(t, orchestrator.StatePartiallySucceeded, snap.State)
	assert.Len(t, snap.Images, 4)
	assert.Equal(t, []cover.Format{cover.FormatStory, cover.FormatPhone}, snap.Missing)
	assert.Equal(t, []int{1, 2, 3, 4}, observed, "partial results are visible while generating")
}

func TestController_SingleFormatFailureLeavesHistoryUntouched(t *testing.T) {
	gen := &stubGenerator{}
	c := newController(gen)
	_, err := c.Generate(context.Background(), req(cover.FormatSquare), nil)
	require.NoError(t, err)
	before := ids(c.History())

	gen.failLabels = []string{cover.FormatBanner.Label()}
	res, err := c.Generate(context.Background(), req(cover.FormatBanner), nil)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeGenerationAPI, errors.CodeOf(err))

	snap := c.Snapshot()
	assert.Equal(t, orchestrator.StateFailed, snap.State)
	assert.Empty(t, snap.Images)
	assert.Contains(t, snap.Error, "model refused")
	assert.Equal(t, before, ids(c.History()))
}

func TestController_TotalBatchFailure(t *testing.T) {
	c := newController(&stubGenerator{failLabels: []string{cover.FormatSquare.Label(), cover.FormatVertical.Label()}})
	_, err := c.Generate(context.Background(), req(cover.FormatSquare), nil)
	require.Error(t, err)

	// two formats both failing: batch mode, but nothing produced
	c2 := newController(&stubGenerator{failLabels: []string{"TASK"}})
	_, err = c2.Generate(context.Background(), req(cover.FormatAll), nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNoImagesGenerated, errors.CodeOf(err))
	assert.Equal(t, "no image could be generated", c2.Snapshot().Error)
	assert.Empty(t, c2.History())
}

func TestController_FallbackMessage(t *testing.T) {
	c := NewController(runnerFunc(func(ctx context.Context, r cover.GenerationRequest, cb orchestrator.ProgressCallback) (*orchestrator.BatchResult, error) {
		return nil, stderrors.New("   ")
	}), 20, logger.NewNop())

	_, err := c.Generate(context.Background(), req(cover.FormatSquare), nil)
	require.Error(t, err)
	assert.Equal(t, fallbackErrorMessage, c.Snapshot().Error)
}

func TestController_RejectsReentry(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	c := NewController(runnerFunc(func(ctx context.Context, r cover.GenerationRequest, cb orchestrator.ProgressCallback) (*orchestrator.BatchResult, error) {
		close(started)
		<-release
		return &orchestrator.BatchResult{
			State:  orchestrator.StateSucceeded,
			Images: []cover.GeneratedImage{{ID: "only"}},
		}, nil
	}), 20, logger.NewNop())

	done := make(chan error, 1)
	go func() {
		_, err := c.Generate(context.Background(), req(cover.FormatSquare), nil)
		done <- err
	}()
	<-started

	assert.Equal(t, orchestrator.StateGenerating, c.Snapshot().State)
	_, err := c.Generate(context.Background(), req(cover.FormatSquare), nil)
	assert.Equal(t, errors.ErrCodeBusy, errors.CodeOf(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, orchestrator.StateSucceeded, c.Snapshot().State)

	img, ok := c.Find("only")
	assert.True(t, ok)
	assert.Equal(t, "only", img.ID)
}

func TestController_HistoryBoundAcrossBatches(t *testing.T) {
	c := newController(&stubGenerator{})
	var lastBatch []string
	for i := 0; i < 5; i++ {
		res, err := c.Generate(context.Background(), req(cover.FormatAll), nil)
		require.NoError(t, err)
		lastBatch = ids(res.Images)
	}
	hist := ids(c.History())
	assert.Len(t, hist, 20)
	assert.Equal(t, lastBatch, hist[:6])
}

func TestController_HistoryCapacityAboveDefaultIsCapped(t *testing.T) {
	orch := orchestrator.New(&stubGenerator{}, limiter.New(1, 0), logger.NewNop(), orchestrator.Options{Model: "m"})
	c := NewController(orch, 50, logger.NewNop())
	for i := 0; i < 5; i++ {
		_, err := c.Generate(context.Background(), req(cover.FormatAll), nil)
		require.NoError(t, err)
	}
	assert.Len(t, c.History(), 20)
}

func TestController_RecoversFromRunnerPanic(t *testing.T) {
	calls := 0
	c := NewController(runnerFunc(func(ctx context.Context, r cover.GenerationRequest, cb orchestrator.ProgressCallback) (*orchestrator.BatchResult, error) {
		calls++
		if calls == 1 {
			panic("decoder exploded")
		}
		return &orchestrator.BatchResult{
			State:  orchestrator.StateSucceeded,
			Images: []cover.GeneratedImage{{ID: "after"}},
		}, nil
	}), 20, logger.NewNop())

	res, err := c.Generate(context.Background(), req(cover.FormatSquare), nil)
	assert.Nil(t, res)
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))

	snap := c.Snapshot()
	assert.Equal(t, orchestrator.StateFailed, snap.State)
	assert.Contains(t, snap.Error, "decoder exploded")

	_, err = c.Generate(context.Background(), req(cover.FormatSquare), nil)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.StateSucceeded, c.Snapshot().State)
}

type runnerFunc func(ctx context.Context, req cover.GenerationRequest, cb orchestrator.ProgressCallback) (*orchestrator.BatchResult, error)

func (f runnerFunc) Run(ctx context.Context, req cover.GenerationRequest, cb orchestrator.ProgressCallback) (*orchestrator.BatchResult, error) {
	return f(ctx, req, cb)
}
