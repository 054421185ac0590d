package wizard

import (
	"context"
	"fmt"

	"go-easyapply-automation/internal/models"

	"go.uber.org/zap"
)

// MaxSteps bounds the number of wizard steps walked for one application.
const MaxSteps = 6

// Surface is the live form the controller drives. Implementations re-read the
// page on every call; nothing observed on one step is reused on the next.
type Surface interface {
	VisibleFields(ctx context.Context) ([]models.FormField, error)
	SetValue(ctx context.Context, field models.FormField, value string) error
	Attach(ctx context.Context, field models.FormField, path string) error
	ActionableControl(ctx context.Context) (models.Control, error)
	Activate(ctx context.Context, control models.Control) error
}

// Answerer supplies values for empty fields.
type Answerer interface {
	Answer(ctx context.Context, field models.FormField, profile models.ApplicantProfile) string
}

// Result is the terminal state of one wizard walk. Outcome is always
// Submitted or Discarded.
type Result struct {
	Outcome models.StepOutcome
	Steps   int
	Trail   []models.StepOutcome
	// Fault is the surface error that made the walk stuck, if any.
	Fault error
}

type Controller struct {
	answers Answerer
	logger  *zap.Logger
}

func NewController(answers Answerer, logger *zap.Logger) *Controller {
	return &Controller{answers: answers, logger: logger.Named("wizard")}
}

// Run fills and advances the wizard until it is submitted, gets stuck or hits
// MaxSteps. A stuck wizard is dismissed and the discard confirmed.
func (c *Controller) Run(ctx context.Context, surface Surface, documentPath string, profile models.ApplicantProfile) Result {
	var res Result

	for res.Steps < MaxSteps {
		res.Steps++
		outcome, err := c.step(ctx, surface, documentPath, profile, res.Steps)
		res.Trail = append(res.Trail, outcome)

		switch outcome {
		case models.StepSubmitted:
			res.Outcome = models.StepSubmitted
			c.logger.Info("application submitted", zap.Int("steps", res.Steps))
			return res
		case models.StepContinue:
			continue
		}

		res.Fault = err
		c.logger.Warn("wizard stuck", zap.Int("step", res.Steps), zap.Error(err))
		return c.discard(ctx, surface, res)
	}

	c.logger.Warn("wizard exceeded step limit", zap.Int("max_steps", MaxSteps))
	res.Trail = append(res.Trail, models.StepStuck)
	return c.discard(ctx, surface, res)
}

func (c *Controller) step(ctx context.Context, surface Surface, documentPath string, profile models.ApplicantProfile, n int) (models.StepOutcome, error) {
	if err := ctx.Err(); err != nil {
		return models.StepStuck, err
	}

	fields, err := surface.VisibleFields(ctx)
	if err != nil {
		return models.StepStuck, fmt.Errorf("step %d: reading fields: %w", n, err)
	}

	attached := false
	for _, field := range fields {
		if field.Kind == models.FieldFileUpload {
			if attached || documentPath == "" {
				continue
			}
			if err := surface.Attach(ctx, field, documentPath); err != nil {
				return models.StepStuck, fmt.Errorf("step %d: attaching document: %w", n, err)
			}
			attached = true
			c.logger.Debug("document attached", zap.String("field", field.Label))
			continue
		}

		if field.Prefilled() {
			continue
		}
		value := c.answers.Answer(ctx, field, profile)
		if value == "" {
			c.logger.Debug("no answer, field left empty", zap.String("field", field.Label))
			continue
		}
		if err := surface.SetValue(ctx, field, value); err != nil {
			return models.StepStuck, fmt.Errorf("step %d: filling %q: %w", n, field.Label, err)
		}
	}

	control, err := surface.ActionableControl(ctx)
	if err != nil {
		return models.StepStuck, fmt.Errorf("step %d: reading controls: %w", n, err)
	}

	switch control {
	case models.ControlSubmit:
		if err := surface.Activate(ctx, control); err != nil {
			return models.StepStuck, fmt.Errorf("step %d: submit: %w", n, err)
		}
		return models.StepSubmitted, nil
	case models.ControlContinue, models.ControlReview:
		if err := surface.Activate(ctx, control); err != nil {
			return models.StepStuck, fmt.Errorf("step %d: %s: %w", n, control, err)
		}
		return models.StepContinue, nil
	default:
		return models.StepStuck, nil
	}
}

// discard closes the wizard and confirms the discard dialog. Failures here
// are logged only; the application is abandoned either way.
func (c *Controller) discard(ctx context.Context, surface Surface, res Result) Result {
	ctx = context.WithoutCancel(ctx)
	if err := surface.Activate(ctx, models.ControlDismiss); err != nil {
		c.logger.Debug("dismiss failed", zap.Error(err))
	}
	if err := surface.Activate(ctx, models.ControlConfirmDiscard); err != nil {
		c.logger.Debug("discard confirmation failed", zap.Error(err))
	}
	res.Outcome = models.StepDiscarded
	res.Trail = append(res.Trail, models.StepDiscarded)
	return res
}
