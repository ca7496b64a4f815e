package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxManager runs a function inside a single atomic transaction. Every storage
// call made with the context passed to fn is part of that transaction: all
// writes commit together when fn returns nil, and none of them take effect
// when fn returns an error.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type sessionTxManager struct {
	client *mongo.Client
}

func NewTxManager(m *Mongo) TxManager {
	return &sessionTxManager{client: m.Client}
}

func (t *sessionTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	// mongo.SessionContext satisfies context.Context, and the driver resolves
	// the active session from the context on every collection call, so the
	// callback can hand repositories a plain context.
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
