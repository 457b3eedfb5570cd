package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Reader is the part of a navigation engine a capture drives.
type Reader interface {
	Next(ctx context.Context) error
	LastSpokenPhrase() (string, error)
	SpokenPhraseLog() ([]string, error)
	ItemTextLog() ([]string, error)
}

// CaptureOptions bounds a capture.
type CaptureOptions struct {
	// MaxSteps is the largest number of Next calls made. Zero means 500.
	MaxSteps int
	// StopPhrase ends the capture once it is the last spoken phrase. Empty
	// means the end of the first announced node, e.g. "end of document".
	StopPhrase string
}

// ErrStepLimit is wrapped when a capture exhausts MaxSteps.
var ErrStepLimit = errors.New("step limit reached")

// Capture moves r forward until the stop phrase is spoken, or the cursor
// stops moving, and returns the logs. A started reader is required.
func Capture(ctx context.Context, r Reader, opts CaptureOptions) (phrases, items []string, err error) {
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 500
	}

	// An empty tree speaks nothing and never reaches a stop phrase.
	if phrases, err = r.SpokenPhraseLog(); err != nil || len(phrases) == 0 {
		return phrases, nil, err
	}
	stop := opts.StopPhrase
	if stop == "" {
		stop = "end of " + phrases[0]
	}

	for step := 0; ; step++ {
		last, err := r.LastSpokenPhrase()
		if err != nil {
			return nil, nil, err
		}
		if strings.EqualFold(last, stop) {
			break
		}
		if step >= maxSteps {
			phrases, _ = r.SpokenPhraseLog()
			items, _ = r.ItemTextLog()
			return phrases, items, fmt.Errorf("%w after %d steps", ErrStepLimit, maxSteps)
		}
		before, err := r.SpokenPhraseLog()
		if err != nil {
			return nil, nil, err
		}
		if err := r.Next(ctx); err != nil {
			return nil, nil, err
		}
		after, err := r.SpokenPhraseLog()
		if err != nil {
			return nil, nil, err
		}
		if len(after) == len(before) {
			// A single-node tree re-reads itself without speaking.
			break
		}
	}

	if phrases, err = r.SpokenPhraseLog(); err != nil {
		return nil, nil, err
	}
	if items, err = r.ItemTextLog(); err != nil {
		return nil, nil, err
	}
	return phrases, items, nil
}
