package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pickup-backend/internal/notification"
	"pickup-backend/internal/pickup/repository"
	"pickup-backend/pkg/fcm"

	"go.uber.org/zap"
)

// Notifier delivers push and in-app notifications on a best-effort basis
type Notifier interface {
	Push(ctx context.Context, recipientID, token string, n fcm.NotificationData) bool
	Notify(ctx context.Context, to notification.Recipient, m notification.Message) notification.Outcome
}

// Deps bundles the collaborators every engine and sweeper is built from.
// The store handles are constructed once by the caller and injected here.
type Deps struct {
	Requests   repository.RequestRepository
	Collectors repository.CollectorRepository
	Users      repository.UserRepository
	Chats      repository.ChatRepository
	Notifier   Notifier
	Picker     Picker
	Log        *zap.Logger
	Now        func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d Deps) picker() Picker {
	if d.Picker == nil {
		return NewRandomPicker(time.Now().UnixNano())
	}
	return d.Picker
}

func (d Deps) logger(name string) *zap.Logger {
	if d.Log == nil {
		return zap.NewNop()
	}
	return d.Log.Named(name)
}

// DocumentError records why a single document was left out of a pass
type DocumentError struct {
	ID  string
	Err error
}

// BatchError aggregates the per-document failures of one pass
type BatchError struct {
	Failures []DocumentError
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.ID, f.Err))
	}
	return fmt.Sprintf("%d document(s) failed: %s", len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap exposes the individual errors to errors.Is and errors.As
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Result summarizes one engine or sweeper invocation
type Result struct {
	Found      int // candidate documents read
	Updated    int // documents whose write committed
	Skipped    int // candidates left untouched on purpose
	Notified   int // pushes handed to the dispatcher
	Collectors int // eligible collectors considered
	Failures   []DocumentError
}

// Err returns a *BatchError when any document failed, nil otherwise
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &BatchError{Failures: r.Failures}
}

func (r *Result) fail(id string, err error) {
	r.Failures = append(r.Failures, DocumentError{ID: id, Err: err})
}

// Counts renders the result for JSON summaries
func (r Result) Counts() map[string]int {
	return map[string]int{
		"found":      r.Found,
		"updated":    r.Updated,
		"skipped":    r.Skipped,
		"notified":   r.Notified,
		"collectors": r.Collectors,
		"failed":     len(r.Failures),
	}
}

var errNoTown = errors.New("request has no town")
