package admin

import (
	"context"
	"errors"
	"net"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"google.golang.org/api/iterator"
)

// IdentityProvider is the slice of the Firebase Auth admin API used here.
// Implementations return *Error values so callers can branch on Kind.
type IdentityProvider interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error
	// Users walks every account. Next returns iterator.Done when exhausted.
	Users(ctx context.Context) UserIterator
}

type UserIterator interface {
	Next() (*User, error)
}

// FirebaseProvider adapts *auth.Client to IdentityProvider.
type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := p.client.GetUserByEmail(ctx, email)
	if err != nil {
		kind := classify(err)
		if kind == KindUnknown && errorutils.IsInvalidArgument(err) {
			kind = KindInvalidEmail
		}
		return nil, newError(kind, "lookup", email, err)
	}
	return fromRecord(u), nil
}

func (p *FirebaseProvider) SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error {
	if err := p.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return newError(classify(err), "set claims", "", err)
	}
	return nil
}

func (p *FirebaseProvider) Users(ctx context.Context) UserIterator {
	return &firebaseUserIterator{it: p.client.Users(ctx, "")}
}

type firebaseUserIterator struct {
	it *auth.UserIterator
}

func (i *firebaseUserIterator) Next() (*User, error) {
	u, err := i.it.Next()
	if errors.Is(err, iterator.Done) {
		return nil, iterator.Done
	}
	if err != nil {
		return nil, newError(classify(err), "list users", "", err)
	}
	return fromRecord(u.UserRecord), nil
}

func fromRecord(u *auth.UserRecord) *User {
	if u == nil {
		return nil
	}
	out := &User{CustomClaims: u.CustomClaims}
	if u.UserInfo != nil {
		out.UID = u.UID
		out.Email = u.Email
	}
	return out
}

// classify maps Firebase Admin SDK errors onto Kind. The auth package's
// IsInvalidEmail and IsInsufficientPermission always report false, so those
// cases are recognised by their HTTP status through errorutils.
func classify(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case auth.IsUserNotFound(err), auth.IsEmailNotFound(err):
		return KindUserNotFound
	case errorutils.IsPermissionDenied(err):
		return KindPermissionDenied
	case errorutils.IsUnauthenticated(err):
		return KindInvalidCredential
	case errorutils.IsUnavailable(err), errorutils.IsDeadlineExceeded(err):
		return KindNetworkError
	case errors.Is(err, context.DeadlineExceeded):
		return KindNetworkError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetworkError
	}
	return KindUnknown
}
