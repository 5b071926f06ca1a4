package main

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"claimsetter/backend/internal/config"
	"claimsetter/backend/internal/domain/admin"

	"google.golang.org/api/iterator"
)

type fakeIDP struct {
	users  map[string]*admin.User
	setErr error

	lookups int
	sets    []map[string]any
}

func (f *fakeIDP) GetUserByEmail(_ context.Context, email string) (*admin.User, error) {
	f.lookups++
	u, ok := f.users[email]
	if !ok {
		return nil, &admin.Error{Kind: admin.KindUserNotFound, Op: "lookup", Email: email}
	}
	return u, nil
}

func (f *fakeIDP) SetCustomUserClaims(_ context.Context, uid string, claims map[string]any) error {
	f.sets = append(f.sets, claims)
	return f.setErr
}

func (f *fakeIDP) Users(context.Context) admin.UserIterator {
	list := make([]*admin.User, 0, len(f.users))
	for _, u := range f.users {
		list = append(list, u)
	}
	return &listIterator{users: list}
}

type listIterator struct{ users []*admin.User }

func (l *listIterator) Next() (*admin.User, error) {
	if len(l.users) == 0 {
		return nil, iterator.Done
	}
	u := l.users[0]
	l.users = l.users[1:]
	return u, nil
}

type harness struct {
	idp        *fakeIDP
	connectErr error
	connects   int
	stdout     bytes.Buffer
	stderr     bytes.Buffer
}

func newHarness() *harness {
	return &harness{idp: &fakeIDP{users: map[string]*admin.User{
		"h1@gmail.com":   {UID: "u1", Email: "h1@gmail.com", CustomClaims: map[string]any{"role": "coach"}},
		"boss@gmail.com": {UID: "u2", Email: "boss@gmail.com", CustomClaims: map[string]any{"admin": true}},
	}}}
}

func (h *harness) run(args ...string) int {
	connect := func(ctx context.Context, cfg config.Config) (*admin.Service, func(), error) {
		h.connects++
		if h.connectErr != nil {
			return nil, nil, h.connectErr
		}
		return admin.NewService(h.idp), func() {}, nil
	}
	return execute(context.Background(), args, &h.stdout, &h.stderr, connect)
}

func TestGrant_Success(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()

	if code := h.run("grant", "h1@gmail.com"); code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), "Custom claim 'admin: true' set successfully!") {
		t.Fatalf("stdout = %q", h.stdout.String())
	}
	if len(h.idp.sets) != 1 || !reflect.DeepEqual(h.idp.sets[0], map[string]any{"admin": true}) {
		t.Fatalf("sets = %v", h.idp.sets)
	}
}

func TestGrant_MergeFlag(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()

	if code := h.run("grant", "--email", "h1@gmail.com", "--merge"); code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, h.stderr.String())
	}
	want := map[string]any{"role": "coach", "admin": true}
	if !reflect.DeepEqual(h.idp.sets[0], want) {
		t.Fatalf("claims = %v, want %v", h.idp.sets[0], want)
	}
}

func TestGrant_EmailFromEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "h1@gmail.com")
	h := newHarness()

	if code := h.run("grant"); code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, h.stderr.String())
	}
	if len(h.idp.sets) != 1 {
		t.Fatalf("sets = %v", h.idp.sets)
	}
}

func TestGrant_UnknownUser(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()

	if code := h.run("grant", "ghost@gmail.com"); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if len(h.idp.sets) != 0 {
		t.Fatal("claims update must not be issued for an unknown user")
	}
	if !strings.Contains(h.stderr.String(), "Error setting custom claim: lookup: user not found") {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
	if h.stdout.Len() != 0 {
		t.Fatalf("stdout = %q", h.stdout.String())
	}
}

func TestGrant_UpdateRejected(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()
	h.idp.setErr = &admin.Error{Kind: admin.KindPermissionDenied, Op: "set claims", Err: errors.New("insufficient permission")}

	if code := h.run("grant", "h1@gmail.com"); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if strings.Contains(h.stdout.String(), "successfully") {
		t.Fatalf("no success message expected, stdout = %q", h.stdout.String())
	}
	if !strings.Contains(h.stderr.String(), "permission denied") {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
}

func TestGrant_CredentialFailureBeforeAnyCall(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()
	h.connectErr = &admin.Error{Kind: admin.KindInvalidCredential, Op: "load credentials", Err: errors.New("read firebase-key.json: no such file or directory")}

	if code := h.run("grant", "h1@gmail.com"); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if h.idp.lookups != 0 || len(h.idp.sets) != 0 {
		t.Fatalf("identity service must not be called: lookups=%d sets=%d", h.idp.lookups, len(h.idp.sets))
	}
	if !strings.Contains(h.stderr.String(), "invalid credential") {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
}

func TestGrant_MissingEmail(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()

	if code := h.run("grant"); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if h.connects != 0 {
		t.Fatal("must not connect without an email")
	}
	if !strings.Contains(h.stderr.String(), config.ErrMissingEmail.Error()) {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
}

func TestGrant_Twice(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()

	for i := 0; i < 2; i++ {
		if code := h.run("grant", "h1@gmail.com"); code != 0 {
			t.Fatalf("run %d: exit = %d", i, code)
		}
	}
	if len(h.idp.sets) != 2 || !reflect.DeepEqual(h.idp.sets[0], h.idp.sets[1]) {
		t.Fatalf("sets = %v", h.idp.sets)
	}
}

func TestRevoke(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()

	if code := h.run("revoke", "boss@gmail.com"); code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, h.stderr.String())
	}
	if len(h.idp.sets) != 1 || len(h.idp.sets[0]) != 0 {
		t.Fatalf("sets = %v", h.idp.sets)
	}
}

func TestShowAndList(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()

	if code := h.run("show", "boss@gmail.com"); code != 0 {
		t.Fatalf("show exit = %d", code)
	}
	if !strings.Contains(h.stdout.String(), "admin: true") {
		t.Fatalf("show stdout = %q", h.stdout.String())
	}

	h.stdout.Reset()
	if code := h.run("list"); code != 0 {
		t.Fatalf("list exit = %d", code)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "u2\tboss@gmail.com" {
		t.Fatalf("list stdout = %q", got)
	}
}

func TestGrant_SuccessKeepsStderrQuiet(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("LOG_LEVEL", "")
	h := newHarness()

	if code := h.run("grant", "h1@gmail.com"); code != 0 {
		t.Fatalf("exit = %d stderr=%s", code, h.stderr.String())
	}
	if h.stderr.Len() != 0 {
		t.Fatalf("stderr = %q, want nothing on success", h.stderr.String())
	}
}

func TestShow_UnencodableClaims(t *testing.T) {
	t.Setenv("ADMIN_EMAIL", "")
	h := newHarness()
	h.idp.users["odd@gmail.com"] = &admin.User{UID: "u3", Email: "odd@gmail.com", CustomClaims: map[string]any{"ch": make(chan int)}}

	if code := h.run("show", "odd@gmail.com"); code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "Error reading custom claims: json: unsupported type") {
		t.Fatalf("stderr = %q", h.stderr.String())
	}
	if h.stdout.Len() != 0 {
		t.Fatalf("stdout = %q", h.stdout.String())
	}
}
