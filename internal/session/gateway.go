// ABOUTME: Bootstrap gateway resolving both session slots at process start
// ABOUTME: Verifies persisted credentials concurrently and independently

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/campushq/registrar/internal/client"
)

// Verifier resolves a persisted credential to an identity via the API's
// who-am-I operations. *client.Client satisfies it through VerifierAdapter.
type Verifier interface {
	VerifyInstitution(ctx context.Context, credential string) (*Identity, error)
	VerifyUser(ctx context.Context, credential string) (*Identity, error)
}

// Gateway resolves the two session slots exactly once per process. Explicit
// login and logout mutate the store directly; the gateway is never re-run.
type Gateway struct {
	store    *Store
	verifier Verifier
	once     sync.Once
	logger   *slog.Logger
}

// NewGateway creates a gateway over the store and verifier
func NewGateway(store *Store, verifier Verifier) *Gateway {
	return &Gateway{
		store:    store,
		verifier: verifier,
		logger:   slog.Default().With("component", "gateway"),
	}
}

// Bootstrap resolves both slots concurrently. Each slot ends with Checked=true
// regardless of outcome, and one slot's failure never affects the other.
// Subsequent calls are no-ops.
func (g *Gateway) Bootstrap(ctx context.Context) error {
	g.once.Do(func() {
		eg, ctx := errgroup.WithContext(ctx)
		for _, kind := range Kinds {
			kind := kind
			eg.Go(func() error {
				g.bootstrapSlot(ctx, kind)
				return nil
			})
		}
		// Goroutines never return errors; slot failures resolve to an
		// unauthenticated slot, not a bootstrap failure.
		_ = eg.Wait()
	})
	return nil
}

func (g *Gateway) bootstrapSlot(ctx context.Context, kind Kind) {
	credential, err := g.store.keyring.Load(kind)
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			g.logger.Warn("failed to load persisted credential", "kind", kind, "error", err)
		}
		g.store.MarkChecked(kind)
		return
	}

	identity, err := g.verify(ctx, kind, credential)
	if err != nil {
		g.store.SetUnauthenticated(kind)
		if client.IsUnauthorized(err) {
			// Expired or revoked; drop it so the next process start does not
			// retry a dead credential.
			if delErr := g.store.keyring.Delete(kind); delErr != nil {
				g.logger.Warn("failed to delete stale credential", "kind", kind, "error", delErr)
			}
			g.logger.Info("persisted credential rejected", "kind", kind)
		} else {
			g.logger.Warn("credential verification failed", "kind", kind, "error", err)
		}
		return
	}

	if err := g.store.SetAuthenticated(kind, identity, credential); err != nil {
		g.store.SetUnauthenticated(kind)
		return
	}
	g.logger.Info("session restored", "kind", kind, "subject", identity.ID)
}

func (g *Gateway) verify(ctx context.Context, kind Kind, credential string) (*Identity, error) {
	if kind == KindInstitution {
		return g.verifier.VerifyInstitution(ctx, credential)
	}
	return g.verifier.VerifyUser(ctx, credential)
}

// VerifierAdapter adapts the API client to the Verifier interface
type VerifierAdapter struct {
	Client *client.Client
}

// VerifyInstitution resolves an institution credential to its identity
func (a VerifierAdapter) VerifyInstitution(ctx context.Context, credential string) (*Identity, error) {
	view, err := a.Client.InstitutionMe(ctx, credential)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: view.ID, Name: view.Name, Email: view.Email}, nil
}

// VerifyUser resolves a user credential to its identity and role
func (a VerifierAdapter) VerifyUser(ctx context.Context, credential string) (*Identity, error) {
	view, err := a.Client.UserMe(ctx, credential)
	if err != nil {
		return nil, err
	}
	return &Identity{ID: view.ID, Name: view.Name, Email: view.Email, Role: Role(view.Role)}, nil
}
