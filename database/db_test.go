package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver"
)

// fakeSession replays the callback the way the driver does when the first
// attempt fails with a TransientTransactionError.
type fakeSession struct {
	attempts int
	retries  int
	ended    bool
}

func (f *fakeSession) WithTransaction(ctx context.Context, fn func(mongo.SessionContext) (interface{}, error), _ ...*options.TransactionOptions) (interface{}, error) {
	var (
		res interface{}
		err error
	)
	for i := 0; i <= f.retries; i++ {
		f.attempts++
		res, err = fn(nil)
		if err == nil {
			return res, nil
		}
	}
	return res, err
}

func (f *fakeSession) EndSession(context.Context) { f.ended = true }

func TestRunTransaction_RetriedCallbackSucceeds(t *testing.T) {
	sess := &fakeSession{retries: 1}
	calls := 0
	transient := mongo.CommandError{Code: 112, Labels: []string{driver.TransientTransactionError}}

	err := runTransaction(context.Background(), sess, func(mongo.SessionContext) error {
		calls++
		if calls == 1 {
			return transient
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.True(t, sess.ended)
}

func TestRunTransaction_ReturnsCallbackError(t *testing.T) {
	sess := &fakeSession{}
	boom := errors.New("slot taken")

	err := runTransaction(context.Background(), sess, func(mongo.SessionContext) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, sess.attempts)
	assert.True(t, sess.ended)
}
