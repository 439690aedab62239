package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ChaseRain/coverstudio/internal/domain/cover"
	"github.com/ChaseRain/coverstudio/internal/infra/limiter"
	"github.com/ChaseRain/coverstudio/internal/infra/logger"
	"github.com/ChaseRain/coverstudio/internal/service/imagegen"
	"github.com/ChaseRain/coverstudio/internal/service/prompt"
	"github.com/ChaseRain/coverstudio/pkg/errors"
	"github.com/ChaseRain/coverstudio/pkg/util"
)

// State of a batch. Succeeded and PartiallySucceeded are both successes;
// they differ only in whether every requested format is present.
type State string

const (
	StateIdle               State = "IDLE"
	StateGenerating         State = "GENERATING"
	StateSucceeded          State = "SUCCEEDED"
	StatePartiallySucceeded State = "PARTIALLY_SUCCEEDED"
	StateFailed             State = "FAILED"
)

const (
	StageStart        = "start"
	StageGenerating   = "generating"
	StagePartial      = "partial"
	StageFormatFailed = "format_failed"
	StageComplete     = "complete"
)

const imageIDLength = 9

// ProgressEvent reports batch progress. Images carries the accumulated sequence on
// StagePartial and StageComplete.
type ProgressEvent struct {
	Stage    string
	Message  string
	Progress int
	Format   cover.Format
	Images   []cover.GeneratedImage
	Err      error
}

// ProgressCallback receives events synchronously on the calling goroutine.
type ProgressCallback func(event ProgressEvent)

type FormatFailure struct {
	Format cover.Format
	Err    error
}

type BatchResult struct {
	State     State
	Requested []cover.Format
	Images    []cover.GeneratedImage
	Failures  []FormatFailure
}

// Missing lists requested formats that produced no image, in request order.
func (r *BatchResult) Missing() []cover.Format {
	out := make([]cover.Format, 0, len(r.Failures))
	for _, f := range r.Failures {
		out = append(out, f.Format)
	}
	return out
}

type Options struct {
	Model string
	// DefaultTitle is recorded on images generated without a title.
	DefaultTitle string
}

type Orchestrator struct {
	generator    imagegen.Generator
	limiter      *limiter.Limiter
	logger       *logger.Logger
	model        string
	defaultTitle string
	now          func() time.Time
	newID        func() string
}

func New(
	generator imagegen.Generator,
	lim *limiter.Limiter,
	log *logger.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		generator:    generator,
		limiter:      lim,
		logger:       log,
		model:        opts.Model,
		defaultTitle: opts.DefaultTitle,
		now:          time.Now,
		newID:        func() string { return util.RandomString(imageIDLength) },
	}
}

// Run expands req.Format and generates one image per concrete format, one
// call at a time. With more than one format a failed format is logged and
// skipped; with a single format its failure is returned as is. A batch that
// yields no image at all fails with ErrCodeNoImagesGenerated.
func (o *Orchestrator) Run(ctx context.Context, req cover.GenerationRequest, onProgress ProgressCallback) (*BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid generation request")
	}

	emit := func(event ProgressEvent) {
		if onProgress != nil {
			onProgress(event)
		}
	}

	formats := req.Format.Expand()
	batch := len(formats) > 1

	o.logger.Info("starting cover generation",
		"style", req.Style,
		"theme", req.Theme,
		"format", req.Format,
		"formats", len(formats),
		"transparent", req.Transparent,
		"has_reference", req.Reference != nil,
	)
	emit(ProgressEvent{Stage: StageStart, Message: "generation started", Progress: 0})

	results := make([]cover.GeneratedImage, 0, len(formats))
	var failures []FormatFailure

	for i, format := range formats {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "generation cancelled")
		}

		emit(ProgressEvent{
			Stage:    StageGenerating,
			Message:  fmt.Sprintf("generating %s", format.Label()),
			Progress: progress(i, len(formats)),
			Format:   format,
		})

		img, err := o.generateOne(ctx, req, format)
		if err != nil {
			if !batch {
				o.logger.Error("cover generation failed", "format", format, "error", err)
				return nil, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.Wrap(ctxErr, errors.ErrCodeInternal, "generation cancelled")
			}
			o.logger.Warn("format generation failed, continuing with batch", "format", format, "error", err)
			failures = append(failures, FormatFailure{Format: format, Err: err})
			emit(ProgressEvent{
				Stage:    StageFormatFailed,
				Message:  fmt.Sprintf("failed to generate %s", format.Label()),
				Progress: progress(i+1, len(formats)),
				Format:   format,
				Err:      err,
			})
			continue
		}

		results = append(results, *img)
		if batch {
			emit(ProgressEvent{
				Stage:    StagePartial,
				Message:  fmt.Sprintf("%s ready", format.Label()),
				Progress: progress(i+1, len(formats)),
				Format:   format,
				Images:   cloneImages(results),
			})
		}
	}

	if len(results) == 0 {
		o.logger.Error("no image could be generated", "formats", len(formats))
		return nil, errors.New(errors.ErrCodeNoImagesGenerated, "no image could be generated")
	}

	state := StateSucceeded
	if len(failures) > 0 {
		state = StatePartiallySucceeded
	}

	emit(ProgressEvent{
		Stage:    StageComplete,
		Message:  "generation complete",
		Progress: 100,
		Images:   cloneImages(results),
	})

	o.logger.Info("cover generation finished",
		"state", state,
		"generated", len(results),
		"failed", len(failures),
	)

	return &BatchResult{
		State:     state,
		Requested: formats,
		Images:    results,
		Failures:  failures,
	}, nil
}

func (o *Orchestrator) generateOne(ctx context.Context, req cover.GenerationRequest, format cover.Format) (*cover.GeneratedImage, error) {
	composition := prompt.Compose(req, format)

	release, err := o.limiter.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRateLimited, "rate limit exceeded")
	}
	defer release()

	out, err := o.generator.Generate(ctx, imagegen.Call{
		Model:       o.model,
		Prompt:      composition.Prompt,
		AspectRatio: composition.AspectRatio,
		Reference:   composition.Reference,
	})
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = o.defaultTitle
	}

	return &cover.GeneratedImage{
		ID:          o.newID(),
		Data:        out.Data,
		MIMEType:    out.MIMEType,
		CreatedAt:   o.now(),
		Prompt:      composition.Prompt,
		Title:       title,
		Style:       req.Style,
		Theme:       req.Theme,
		Format:      format,
		Transparent: req.Transparent,
	}, nil
}

func progress(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

func cloneImages(in []cover.GeneratedImage) []cover.GeneratedImage {
	out := make([]cover.GeneratedImage, len(in))
	copy(out, in)
	return out
}
