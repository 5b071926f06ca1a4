package admin

import (
	"context"
	"errors"
	"time"

	"claimsetter/backend/internal/authctx"
	"claimsetter/backend/internal/domain/audit"
	"claimsetter/backend/internal/utils"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
)

// AuditLog stores claim changes. Optional; see Service.SetAuditLog.
type AuditLog interface {
	Record(ctx context.Context, ev audit.Event) error
	Latest(ctx context.Context, uid string, limit int) ([]audit.Event, error)
}

type Service struct {
	idp   IdentityProvider
	audit AuditLog
	now   func() time.Time
}

func NewService(idp IdentityProvider) *Service {
	return &Service{idp: idp, now: time.Now}
}

// SetAuditLog enables audit records for Grant and Revoke.
func (s *Service) SetAuditLog(a AuditLog) {
	s.audit = a
}

// Grant looks up req.Email and sets the admin claim on that account. The
// lookup and the update are strictly ordered; if the lookup fails no update
// is issued.
func (s *Service) Grant(ctx context.Context, req GrantRequest) (*Grant, error) {
	email, err := normalize(req.Email)
	if err != nil {
		return nil, err
	}

	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	claims := grantClaims(u.CustomClaims, req.Merge)
	if err := s.setClaims(ctx, u, claims); err != nil {
		return nil, err
	}

	g := &Grant{
		UID:    u.UID,
		Email:  email,
		Claims: claims,
		Merged: req.Merge,
		At:     s.now().UTC(),
	}
	log.Debug().Str("uid", g.UID).Str("email", email).Bool("merged", g.Merged).Msg("admin claim granted")

	s.record(ctx, audit.Event{
		Action: audit.ActionGrant,
		UID:    g.UID,
		Email:  email,
		Claims: claims,
		Merged: g.Merged,
		At:     g.At,
	})
	return g, nil
}

// Revoke removes the admin claim and keeps every other custom claim.
func (s *Service) Revoke(ctx context.Context, email string) (*Grant, error) {
	email, err := normalize(email)
	if err != nil {
		return nil, err
	}

	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}

	claims := revokeClaims(u.CustomClaims)
	if err := s.setClaims(ctx, u, claims); err != nil {
		return nil, err
	}

	g := &Grant{
		UID:    u.UID,
		Email:  email,
		Claims: claims,
		Merged: true,
		At:     s.now().UTC(),
	}
	log.Debug().Str("uid", g.UID).Str("email", email).Msg("admin claim revoked")

	s.record(ctx, audit.Event{
		Action: audit.ActionRevoke,
		UID:    g.UID,
		Email:  email,
		Claims: claims,
		Merged: true,
		At:     g.At,
	})
	return g, nil
}

func (s *Service) Status(ctx context.Context, email string) (*Status, error) {
	email, err := normalize(email)
	if err != nil {
		return nil, err
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	return toStatus(u), nil
}

// ListAdmins walks every account and returns those IsAdmin accepts.
func (s *Service) ListAdmins(ctx context.Context) ([]Status, error) {
	out := []Status{}
	it := s.idp.Users(ctx)
	for {
		u, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, asError(err, "list users", "")
		}
		if u == nil || !IsAdmin(u.CustomClaims) {
			continue
		}
		out = append(out, *toStatus(u))
	}
	return out, nil
}

// History returns recent audit events for the account behind email. It
// returns an empty list when auditing is disabled.
func (s *Service) History(ctx context.Context, email string, limit int) ([]audit.Event, error) {
	email, err := normalize(email)
	if err != nil {
		return nil, err
	}
	u, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if s.audit == nil {
		return []audit.Event{}, nil
	}
	events, err := s.audit.Latest(ctx, u.UID, limit)
	if err != nil {
		return nil, asError(err, "audit history", email)
	}
	return events, nil
}

func (s *Service) lookup(ctx context.Context, email string) (*User, error) {
	u, err := s.idp.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, asError(err, "lookup", email)
	}
	if u == nil || u.UID == "" {
		return nil, newError(KindUserNotFound, "lookup", email, nil)
	}
	return u, nil
}

func (s *Service) setClaims(ctx context.Context, u *User, claims map[string]any) error {
	if err := s.idp.SetCustomUserClaims(ctx, u.UID, claims); err != nil {
		return asError(err, "set claims", u.Email)
	}
	return nil
}

// record writes an audit event. The claim change has already happened, so
// a failed write is logged and not returned.
func (s *Service) record(ctx context.Context, ev audit.Event) {
	if s.audit == nil {
		return
	}
	if actor, ok := authctx.Actor(ctx); ok {
		ev.Actor = actor
	}
	if err := s.audit.Record(ctx, ev); err != nil {
		log.Warn().Err(err).Str("uid", ev.UID).Str("action", ev.Action).Msg("audit record failed")
	}
}

func normalize(email string) (string, error) {
	n := utils.NormalizeEmail(email)
	if n == "" {
		return "", newError(KindInvalidEmail, "validate", email, nil)
	}
	return n, nil
}

func toStatus(u *User) *Status {
	return &Status{
		UID:     u.UID,
		Email:   u.Email,
		Claims:  u.CustomClaims,
		IsAdmin: IsAdmin(u.CustomClaims),
	}
}

// asError keeps an existing *Error (filling in the email) and tags anything
// else from the provider as KindUnknown, or KindNetworkError for context
// deadlines.
func asError(err error, op, email string) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Email == "" && email != "" {
			cp := *e
			cp.Email = email
			return &cp
		}
		return e
	}
	kind := KindUnknown
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindNetworkError
	}
	return newError(kind, op, email, err)
}
