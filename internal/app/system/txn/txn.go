// Package txn runs multi-document writes in a MongoDB transaction when the
// deployment supports one, and sequentially when it does not (standalone
// servers used in development and tests).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Server error codes that mean "transactions are unavailable here".
const (
	codeIllegalOperation           = 20
	codeOperationNotSupportedInTxn = 263
)

// IsNotSupported reports whether err says the server cannot run
// transactions (standalone mongod, or a deployment without sessions).
// Aborted or conflicting transactions are not matched.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case codeIllegalOperation, codeOperationNotSupportedInTxn:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction numbers are only allowed"):
		return true
	case has("transaction") && has("replica set"):
		return true
	case has("sessions are not supported"):
		return true
	}
	return false
}

// Run calls fn inside a transaction on client. If the deployment rejects
// transactions, fn is called again without one and its writes apply one
// by one. fn must therefore tolerate being invoked twice when the first
// attempt was rolled back.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions unavailable; running writes sequentially", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}
