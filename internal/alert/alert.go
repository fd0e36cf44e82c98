// Package alert delivers reports of finished runs to external systems.
package alert

import (
	"context"
	"errors"

	"github.com/go-sod/rad/internal/run/model"
)

// Notifier delivers a run report. Notify returns once delivery has
// succeeded or failed.
type Notifier interface {
	Notify(ctx context.Context, report model.Report) error
}

type Nop struct{}

func (Nop) Notify(context.Context, model.Report) error { return nil }

// Multi notifies every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, report model.Report) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
