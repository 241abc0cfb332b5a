package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bancentral/corebank/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SessionGate validates session tokens and capability grants before any
// ledger mutation or sensitive read. Sessions and grants are issued by an
// external access control system; the gate only reads them.
type SessionGate interface {
	// IsSessionValid reports whether the token names a live, unexpired session
	IsSessionValid(ctx context.Context, token string) (bool, error)

	// HasPermission reports whether the session's user holds the capability.
	// An invalid session yields false, not an error.
	HasPermission(ctx context.Context, token, capability string) (bool, error)

	// UserID resolves the user behind a valid session token
	UserID(ctx context.Context, token string) (uuid.UUID, error)
}

// GormSessionGate implements SessionGate against the sessions and
// user_capabilities tables, with an optional Redis cache in front of the
// capability lookups.
type GormSessionGate struct {
	db       *gorm.DB
	cache    *redis.Client
	cacheTTL time.Duration
}

// GateOption configures a GormSessionGate
type GateOption func(*GormSessionGate)

// WithPermissionCache puts a Redis cache in front of capability lookups
func WithPermissionCache(client *redis.Client, ttl time.Duration) GateOption {
	return func(g *GormSessionGate) {
		g.cache = client
		g.cacheTTL = ttl
	}
}

// NewGormSessionGate creates a session gate backed by the database
func NewGormSessionGate(db *gorm.DB, opts ...GateOption) *GormSessionGate {
	g := &GormSessionGate{
		db:       db,
		cacheTTL: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// findSession loads the session row for a token, nil when absent
func (g *GormSessionGate) findSession(ctx context.Context, token string) (*models.SessionModel, error) {
	var session models.SessionModel
	if err := g.db.WithContext(ctx).
		First(&session, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// IsSessionValid reports whether the token names a live, unexpired session
func (g *GormSessionGate) IsSessionValid(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	session, err := g.findSession(ctx, token)
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}
	return !session.IsExpired(time.Now().UTC()), nil
}

// HasPermission reports whether the session's user holds the capability
func (g *GormSessionGate) HasPermission(ctx context.Context, token, capability string) (bool, error) {
	session, err := g.findSession(ctx, token)
	if err != nil {
		return false, err
	}
	if session == nil || session.IsExpired(time.Now().UTC()) {
		return false, nil
	}

	if g.cache != nil {
		key := g.permissionKey(session.UserID, capability)
		cached, err := g.cache.Get(ctx, key).Result()
		if err == nil {
			return cached == "1", nil
		}
		// Cache miss or unavailable: fall through to the database
	}

	var count int64
	if err := g.db.WithContext(ctx).
		Model(&models.UserCapabilityModel{}).
		Where("user_id = ? AND capability = ?", session.UserID, capability).
		Count(&count).Error; err != nil {
		return false, err
	}
	granted := count > 0

	if g.cache != nil {
		value := "0"
		if granted {
			value = "1"
		}
		// Best effort; a failed cache write never blocks the decision
		g.cache.Set(ctx, g.permissionKey(session.UserID, capability), value, g.cacheTTL)
	}

	return granted, nil
}

// UserID resolves the user behind a valid session token
func (g *GormSessionGate) UserID(ctx context.Context, token string) (uuid.UUID, error) {
	session, err := g.findSession(ctx, token)
	if err != nil {
		return uuid.Nil, err
	}
	if session == nil || session.IsExpired(time.Now().UTC()) {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return session.UserID, nil
}

func (g *GormSessionGate) permissionKey(userID uuid.UUID, capability string) string {
	return fmt.Sprintf("gate:perm:%s:%s", userID, capability)
}

// Ensure GormSessionGate implements SessionGate
var _ SessionGate = (*GormSessionGate)(nil)

// InMemorySessionGate provides an in-memory implementation for testing
type InMemorySessionGate struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	grants   map[uuid.UUID]map[string]bool
}

type sessionEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// NewInMemorySessionGate creates a new in-memory session gate
func NewInMemorySessionGate() *InMemorySessionGate {
	return &InMemorySessionGate{
		sessions: make(map[string]sessionEntry),
		grants:   make(map[uuid.UUID]map[string]bool),
	}
}

// AddSession registers a session valid until the given time
func (g *InMemorySessionGate) AddSession(token string, userID uuid.UUID, expiresAt time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[token] = sessionEntry{userID: userID, expiresAt: expiresAt}
}

// Grant records a capability for a user
func (g *InMemorySessionGate) Grant(userID uuid.UUID, capabilities ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.grants[userID] == nil {
		g.grants[userID] = make(map[string]bool)
	}
	for _, c := range capabilities {
		g.grants[userID][c] = true
	}
}

// IsSessionValid reports whether the token names a live, unexpired session
func (g *InMemorySessionGate) IsSessionValid(_ context.Context, token string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.sessions[token]
	if !ok {
		return false, nil
	}
	return entry.expiresAt.After(time.Now().UTC()), nil
}

// HasPermission reports whether the session's user holds the capability
func (g *InMemorySessionGate) HasPermission(_ context.Context, token, capability string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.sessions[token]
	if !ok || !entry.expiresAt.After(time.Now().UTC()) {
		return false, nil
	}
	return g.grants[entry.userID][capability], nil
}

// UserID resolves the user behind a valid session token
func (g *InMemorySessionGate) UserID(_ context.Context, token string) (uuid.UUID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	entry, ok := g.sessions[token]
	if !ok || !entry.expiresAt.After(time.Now().UTC()) {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return entry.userID, nil
}

// Ensure InMemorySessionGate implements SessionGate
var _ SessionGate = (*InMemorySessionGate)(nil)
