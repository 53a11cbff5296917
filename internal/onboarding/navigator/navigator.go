// internal/onboarding/navigator/navigator.go
package navigator

import (
	"fmt"

	"driver-onboarding/internal/common/errors"
	"driver-onboarding/internal/common/metrics"
	"driver-onboarding/internal/onboarding/session"
	"driver-onboarding/internal/onboarding/validate"
)

const (
	FirstStep = 1
	LastStep  = 4
)

// Next validates the current step before advancing. On failure the step does
// not change and the aggregate's error map holds the field errors; on success
// the error map is cleared and MaxVisitedStep tracks the high-water mark.
func Next(app *session.Application) error {
	errs := validate.Step(app.CurrentStep, app)
	app.Errors = errs
	if len(errs) > 0 {
		metrics.StepValidationFailures.WithLabelValues(fmt.Sprintf("%d", app.CurrentStep)).Inc()
		return errors.NewStepValidationFailedError(app.CurrentStep, len(errs))
	}

	if app.CurrentStep < LastStep {
		app.CurrentStep++
		if app.CurrentStep > app.MaxVisitedStep {
			app.MaxVisitedStep = app.CurrentStep
		}
	}
	return nil
}

// Back moves one step toward the start without validating. Entered data and
// any displayed errors are left as they are.
func Back(app *session.Application) {
	if app.CurrentStep > FirstStep {
		app.CurrentStep--
	}
}

// Jump moves directly to a previously visited step. Forward jumps past the
// high-water mark are refused so no step is reached without passing the
// validators between.
func Jump(app *session.Application, step int) error {
	if step < FirstStep || step > LastStep {
		return errors.NewStepNotReadyError(step)
	}
	if step > app.MaxVisitedStep {
		return errors.NewStepNotReadyError(step)
	}
	app.CurrentStep = step
	return nil
}
