package maint

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/dalemusser/greenlink/internal/app/system/indexes"
	"github.com/dalemusser/greenlink/internal/app/system/validators"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// sessionKeyLen is the byte length of a generated session signing key.
const sessionKeyLen = 32

// Setup creates the collections with validators and indexes, then prints
// the environment lines a deployment needs, including a fresh session key.
func (t *Tool) Setup(ctx context.Context) error {
	if err := validators.EnsureAll(ctx, t.DB); err != nil {
		return fmt.Errorf("validators: %w", err)
	}
	t.Log.Info("collections and validators ready", zap.Strings("collections", collections.All()))

	if err := t.CreateIndexes(ctx); err != nil {
		return err
	}

	key, err := NewSessionKey()
	if err != nil {
		return err
	}

	n := collections.Current()
	t.printf("\nAdd these to your environment:\n\n")
	t.printf("GREENLINK_MONGO_DATABASE=%s\n", t.DB.Name())
	t.printf("GREENLINK_COLLECTION_HOUSEHOLDS=%s\n", n.Households)
	t.printf("GREENLINK_COLLECTION_COLLECTORS=%s\n", n.Collectors)
	t.printf("GREENLINK_COLLECTION_ROUTES=%s\n", n.Routes)
	t.printf("GREENLINK_COLLECTION_LOGS=%s\n", n.Logs)
	t.printf("GREENLINK_SESSION_KEY=%s\n", key)
	return nil
}

// CreateIndexes reconciles every index set.
func (t *Tool) CreateIndexes(ctx context.Context) error {
	if err := indexes.EnsureAll(ctx, t.DB); err != nil {
		return fmt.Errorf("indexes: %w", err)
	}
	for _, s := range indexes.Desired() {
		t.Log.Info("indexes ensured",
			zap.String("collection", s.Collection),
			zap.Int("count", len(s.Models)))
	}
	return nil
}

// NewSessionKey returns a random signing key, base64 encoded.
func NewSessionKey() (string, error) {
	b := securecookie.GenerateRandomKey(sessionKeyLen)
	if b == nil {
		return "", errors.New("generate session key: random source failed")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
