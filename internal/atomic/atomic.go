// Package atomic implements the transactional mutation coordinator. Every
// multi-entity write in the application (product/comment create and delete)
// is expressed as an ordered list of steps executed inside a single Mongo
// transaction: all steps commit together or none do. Cross-entity effects
// are always explicit steps here, never side effects of a save call.
package atomic

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Step is one mutation inside an atomic unit. The context passed to it is
// bound to the unit's session; repository methods called with it join the
// transaction transparently.
type Step func(ctx context.Context) error

// Runner executes an ordered list of steps atomically. Handlers depend on
// this interface so tests can substitute a plain sequential runner.
type Runner interface {
	RunAtomic(ctx context.Context, steps ...Step) error
}

// SessionRunner runs steps inside a Mongo multi-document transaction.
type SessionRunner struct {
	client *mongo.Client
}

// NewSessionRunner returns a Runner backed by the given client.
func NewSessionRunner(client *mongo.Client) *SessionRunner {
	return &SessionRunner{client: client}
}

// RunAtomic starts a session, executes the steps in declared order inside a
// transaction and commits if every step succeeds. The first failing step
// aborts the transaction and its error is returned untouched; no translation
// happens here. The session is ended on every exit path.
func (r *SessionRunner) RunAtomic(ctx context.Context, steps ...Step) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, runSteps(ctx, steps)
	})
	return err
}

// runSteps executes steps strictly in order, stopping at the first error.
func runSteps(ctx context.Context, steps []Step) error {
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}
