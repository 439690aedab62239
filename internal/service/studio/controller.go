package studio

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/internal/service/orchestrator"
	"github.com/ChaseRain/coverstudio/pkg/errors"
)

const fallbackErrorMessage = "generation failed, please try again"

// Runner runs one batch. *orchestrator.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, req cover.GenerationRequest, onProgress orchestrator.ProgressCallback) (*orchestrator.BatchResult, error)
}

// Snapshot is a point-in-time copy of the controller state.
type Snapshot struct {
	State       orchestrator.State
	Images      []cover.GeneratedImage
	ActiveIndex int
	Error       string
	Missing     []cover.Format
}

// Active returns the displayed image, if any.
func (s Snapshot) Active() (cover.GeneratedImage, bool) {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Images) {
		return cover.GeneratedImage{}, false
	}
	return s.Images[s.ActiveIndex], true
}

// Controller owns the session state: the current image set, the active
// pointer, the bounded history and the last error. All transitions go
// through its methods.
type Controller struct {
	runner  Runner
	logger  *logger.Logger
	mu      sync.Mutex
	state   orchestrator.State
	current []cover.GeneratedImage
	active  int
	lastErr string
	missing []cover.Format
	history *History
}

func NewController(runner Runner, historyCapacity int, log *logger.Logger) *Controller {
	return &Controller{
		runner:  runner,
		logger:  log,
		state:   orchestrator.StateIdle,
		history: NewHistory(historyCapacity),
	}
}

// Generate runs a batch for req. Only one batch may run at a time; a second
// call while generating fails with ErrCodeBusy. onProgress may be nil.
func (c *Controller) Generate(ctx context.Context, req cover.GenerationRequest, onProgress orchestrator.ProgressCallback) (res *orchestrator.BatchResult, err error) {
	if err := c.begin(); err != nil {
		return nil, err
	}

	// A panicking runner must not leave the controller stuck in StateGenerating.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = errors.New(errors.ErrCodeInternal, fmt.Sprintf("generation panicked: %v", r))
			c.fail(err)
		}
	}()

	res, err = c.runner.Run(ctx, req, func(event orchestrator.ProgressEvent) {
		if event.Stage == orchestrator.StagePartial {
			c.publishPartial(event.Images)
		}
		if onProgress != nil {
			onProgress(event)
		}
	})
	if err != nil {
		c.fail(err)
		return nil, err
	}

	c.succeed(res)
	return res, nil
}

func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == orchestrator.StateGenerating {
		return errors.New(errors.ErrCodeBusy, "a generation is already in progress")
	}
	c.state = orchestrator.StateGenerating
	c.current = nil
	c.active = 0
	c.lastErr = ""
	c.missing = nil
	return nil
}

func (c *Controller) publishPartial(images []cover.GeneratedImage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = images
}

func (c *Controller) fail(err error) {
	msg := strings.TrimSpace(errors.Reason(err))
	if msg == "" {
		msg = fallbackErrorMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = orchestrator.StateFailed
	c.current = nil
	c.active = 0
	c.lastErr = msg
	c.logger.Error("generation failed", "error", err)
}

func (c *Controller) succeed(res *orchestrator.BatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = res.State
	c.current = res.Images
	c.active = 0
	c.missing = res.Missing()
	c.history.Prepend(res.Images)
}

// Select moves the active pointer within the current image set.
func (c *Controller) Select(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.current) {
		return errors.New(errors.ErrCodeInvalidReq, fmt.Sprintf("index %d out of range [0,%d)", index, len(c.current)))
	}
	c.active = index
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	images := make([]cover.GeneratedImage, len(c.current))
	copy(images, c.current)
	missing := make([]cover.Format, len(c.missing))
	copy(missing, c.missing)
	return Snapshot{
		State:       c.state,
		Images:      images,
		ActiveIndex: c.active,
		Error:       c.lastErr,
		Missing:     missing,
	}
}

func (c *Controller) History() []cover.GeneratedImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Items()
}

// Find looks an image up in the current set first, then in history.
func (c *Controller) Find(id string) (cover.GeneratedImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, img := range c.current {
		if img.ID == id {
			return img, true
		}
	}
	return c.history.Find(id)
}
