package inspect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AmirthaRajaRajeswari/GD-T-Assistant/internal/config"
)

// Inspector runs a checklist against a segmented directory.
type Inspector struct {
	model       Model
	log         logrus.FieldLogger
	maxAttempts int
	delay       time.Duration

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Inspector that retries transient model errors as
// configured.
func New(model Model, cfg config.Inspection, log logrus.FieldLogger) *Inspector {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Inspector{
		model:       model,
		log:         log,
		maxAttempts: attempts,
		delay:       time.Duration(cfg.InitialDelay * float64(time.Second)),
		sleep:       sleepContext,
	}
}

// Inspect loads the blocks in dir and asks the model for a verdict on
// every rule.
func (i *Inspector) Inspect(ctx context.Context, dir string, rules []Rule) ([]Verdict, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}

	_, images, err := LoadBlocks(dir)
	if err != nil {
		return nil, err
	}

	prompt, err := BuildPrompt(Labels(images), rules)
	if err != nil {
		return nil, err
	}

	i.log.WithFields(logrus.Fields{"blocks": len(images), "rules": len(rules)}).Info("inspecting drawing")

	text, err := i.generate(ctx, prompt, images)
	if err != nil {
		return nil, err
	}
	return ParseVerdicts(text)
}

// generate calls the model, retrying transient failures with a doubling
// delay.
func (i *Inspector) generate(ctx context.Context, prompt string, images []BlockImage) (string, error) {
	delay := i.delay
	for attempt := 1; ; attempt++ {
		text, err := i.model.Generate(ctx, prompt, images)
		if err == nil {
			return text, nil
		}
		if !IsTransient(err) || attempt >= i.maxAttempts {
			return "", fmt.Errorf("model request failed after %d attempt(s): %w", attempt, err)
		}

		i.log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay.String()}).
			WithError(err).Warn("model overloaded, retrying")

		if err := i.sleep(ctx, delay); err != nil {
			return "", err
		}
		delay *= 2
	}
}

// IsTransient reports whether err is a server-side condition worth
// retrying: overload, quota exhaustion or an internal error.
func IsTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.Internal:
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
