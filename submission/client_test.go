package submission_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sean-lockwood/crimson-ins-submit/schema"
	"github.com/sean-lockwood/crimson-ins-submit/submission"
)

// stubService records collaborator calls and fails on demand.
type stubService struct {
	certifyErr error
	loginErr   error
	lockErr    error
	uploadErr  error
	postErr    error

	certified int
	locks     []string
	unlocks   []string
	uploads   [][]string
	posts     [][]byte
}

func (s *stubService) Certify(ctx context.Context, path string) error {
	s.certified++
	return s.certifyErr
}

func (s *stubService) Login(ctx context.Context, username, key string) error { return s.loginErr }
func (s *stubService) Logout(ctx context.Context) error                      { return nil }

func (s *stubService) Lock(ctx context.Context, instrument string) error {
	if s.lockErr != nil {
		return s.lockErr
	}
	s.locks = append(s.locks, instrument)
	return nil
}

func (s *stubService) Unlock(ctx context.Context, instrument string) error {
	s.unlocks = append(s.unlocks, instrument)
	return nil
}

func (s *stubService) Upload(ctx context.Context, paths []string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	s.uploads = append(s.uploads, paths)
	return nil
}

func (s *stubService) PostSubmission(ctx context.Context, document []byte) (string, error) {
	if s.postErr != nil {
		return "", s.postErr
	}
	s.posts = append(s.posts, document)
	return "sub-42", nil
}

func newTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(
		schema.FieldDefinition{Key: "deliverer", Kind: schema.KindText, Required: true},
		schema.FieldDefinition{Key: "instrument", Kind: schema.KindText, Required: true, Choices: submission.Instruments(submission.HST)},
		schema.FieldDefinition{Key: "history_updated", Kind: schema.KindBool, Required: true},
		schema.FieldDefinition{Key: "change_level", Kind: schema.KindText, Required: true, Choices: []string{"Severe", "Moderate", "Trivial"}, Initial: "Severe"},
		schema.FieldDefinition{Key: "jira_issue", Kind: schema.KindText},
	)
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}
	return s
}

func newTestClient(t *testing.T, svc *stubService) *submission.Client {
	t.Helper()
	c, err := submission.New(submission.HST, submission.Dev, newTestSchema(t), svc)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

// fillRequired sets every required field to a valid value, with the
// instrument set to acs and a deliberately-false required boolean.
func fillRequired(t *testing.T, c *submission.Client) {
	t.Helper()
	if err := c.Set("deliverer", "Sean"); err != nil {
		t.Fatalf("set deliverer: %v", err)
	}
	if err := c.Set("instrument", "acs"); err != nil {
		t.Fatalf("set instrument: %v", err)
	}
	if err := c.Set("history_updated", false); err != nil {
		t.Fatalf("set history_updated: %v", err)
	}
}

func TestAuthenticateFailureLeavesSession(t *testing.T) {
	svc := &stubService{loginErr: errors.New("bad token")}
	c := newTestClient(t, svc)

	err := c.Authenticate(context.Background(), "sean", "nope")
	var authFailed *submission.AuthenticationFailedError
	if !errors.As(err, &authFailed) {
		t.Fatalf("expected AuthenticationFailedError, got %v", err)
	}
	if c.Username() != submission.Unauthenticated {
		t.Fatalf("failed login must not set identity, got %q", c.Username())
	}
}

func TestLockRequiresAuthentication(t *testing.T) {
	svc := &stubService{}
	c := newTestClient(t, svc)

	if err := c.Lock(context.Background(), "acs"); !errors.Is(err, submission.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	if len(svc.locks) != 0 {
		t.Fatal("guard failure must not reach the server")
	}
}

func TestLockInvalidInstrument(t *testing.T) {
	svc := &stubService{}
	c := newTestClient(t, svc)
	if err := c.Authenticate(context.Background(), "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	err := c.Lock(context.Background(), "miri") // a JWST instrument, client is HST
	var invalid *submission.InvalidInstrumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInstrumentError, got %v", err)
	}
	if c.LockStatus() != submission.Unlocked {
		t.Fatalf("failed lock must leave status unchanged, got %q", c.LockStatus())
	}
}

func TestLockIdempotentReLock(t *testing.T) {
	svc := &stubService{}
	c := newTestClient(t, svc)
	ctx := context.Background()
	if err := c.Authenticate(ctx, "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := c.Lock(ctx, "acs"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := c.Lock(ctx, "acs"); err != nil {
		t.Fatalf("re-lock of held instrument must succeed: %v", err)
	}
	if len(svc.locks) != 1 {
		t.Fatalf("idempotent re-lock must not call the server again, got %d calls", len(svc.locks))
	}

	if err := c.Lock(ctx, "stis"); !errors.Is(err, submission.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld for second instrument, got %v", err)
	}
	if c.LockStatus() != "acs" {
		t.Fatalf("lock status must still be acs, got %q", c.LockStatus())
	}
}

func TestLogoutBlockedWhileLocked(t *testing.T) {
	svc := &stubService{}
	c := newTestClient(t, svc)
	ctx := context.Background()
	if err := c.Authenticate(ctx, "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := c.Lock(ctx, "acs"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	if err := c.Logout(ctx); !errors.Is(err, submission.ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}
	if c.Username() != "sean" {
		t.Fatalf("blocked logout must keep identity, got %q", c.Username())
	}

	if err := c.Unlock(ctx); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout after unlock: %v", err)
	}
	if c.Username() != submission.Unauthenticated {
		t.Fatalf("expected unauthenticated, got %q", c.Username())
	}
}

func TestUnlockWithoutLock(t *testing.T) {
	c := newTestClient(t, &stubService{})
	if err := c.Unlock(context.Background()); !errors.Is(err, submission.ErrNotLocked) {
		t.Fatalf("expected ErrNotLocked, got %v", err)
	}
}

func TestValidateBatchesEmptyRequired(t *testing.T) {
	c := newTestClient(t, &stubService{})

	err := c.Validate()
	var empty *submission.EmptyRequiredFieldsError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyRequiredFieldsError, got %v", err)
	}
	// deliverer and instrument are both empty; history_updated is false
	// (a value) and change_level has a default.
	if len(empty.Keys) != 2 {
		t.Fatalf("expected 2 empty keys, got %v", empty.Keys)
	}
}

func TestValidateNoFiles(t *testing.T) {
	c := newTestClient(t, &stubService{})
	fillRequired(t, c)

	if err := c.Validate(); !errors.Is(err, submission.ErrNoFilesAttached) {
		t.Fatalf("expected ErrNoFilesAttached, got %v", err)
	}
	// validate is repeatable with the same result
	if err := c.Validate(); !errors.Is(err, submission.ErrNoFilesAttached) {
		t.Fatalf("second validate: %v", err)
	}
}

func TestValidateLockMismatch(t *testing.T) {
	svc := &stubService{}
	c := newTestClient(t, svc)
	ctx := context.Background()
	fillRequired(t, c)
	if err := c.AddFile(ctx, tempFile(t, "dark.fits")); err != nil {
		t.Fatalf("add file: %v", err)
	}
	if err := c.Authenticate(ctx, "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := c.Lock(ctx, "stis"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := c.Set("instrument", "wfc3"); err != nil {
		t.Fatalf("set instrument: %v", err)
	}

	err := c.Validate()
	var mismatch *submission.LockMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected LockMismatchError, got %v", err)
	}
	if mismatch.Locked != "stis" || mismatch.Reported != "wfc3" {
		t.Fatalf("unexpected mismatch detail: %+v", mismatch)
	}

	if err := c.Set("instrument", "stis"); err != nil {
		t.Fatalf("set instrument: %v", err)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate after fixing instrument: %v", err)
	}
}

func TestSubmitSuccessReleasesLock(t *testing.T) {
	svc := &stubService{}
	c := newTestClient(t, svc)
	ctx := context.Background()
	fillRequired(t, c)
	path := tempFile(t, "dark.fits")
	if err := c.AddFile(ctx, path); err != nil {
		t.Fatalf("add file: %v", err)
	}
	if err := c.Authenticate(ctx, "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := c.Lock(ctx, "acs"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	id, err := c.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id != "sub-42" {
		t.Fatalf("expected sub-42, got %q", id)
	}
	if c.LockStatus() != submission.Unlocked {
		t.Fatalf("submit must release the lock, got %q", c.LockStatus())
	}
	if c.Username() != "sean" {
		t.Fatalf("submit must keep the identity, got %q", c.Username())
	}
	if len(svc.uploads) != 1 || svc.uploads[0][0] != path {
		t.Fatalf("expected one upload of %q, got %v", path, svc.uploads)
	}
	if len(svc.posts) != 1 {
		t.Fatalf("expected one post, got %d", len(svc.posts))
	}
	// record and file set survive for inspection
	if len(c.Files()) != 1 {
		t.Fatalf("submit must leave the file set, got %v", c.Files())
	}
	if v, _ := c.Get("deliverer"); v != "Sean" {
		t.Fatalf("submit must leave the record, got deliverer=%v", v)
	}
}

func TestSubmitValidationFailureSkipsCollaborators(t *testing.T) {
	svc := &stubService{}
	c := newTestClient(t, svc)
	ctx := context.Background()
	fillRequired(t, c)
	if err := c.Authenticate(ctx, "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := c.Lock(ctx, "acs"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	// no file attached
	_, err := c.Submit(ctx)
	if !errors.Is(err, submission.ErrNoFilesAttached) {
		t.Fatalf("expected ErrNoFilesAttached, got %v", err)
	}
	if len(svc.uploads) != 0 || len(svc.posts) != 0 {
		t.Fatal("failed validation must not call upload or post")
	}
	if c.LockStatus() != "acs" {
		t.Fatalf("failed submit must keep the lock, got %q", c.LockStatus())
	}
}

func TestSubmitServerRejectionKeepsState(t *testing.T) {
	svc := &stubService{postErr: errors.New("bad delivery")}
	c := newTestClient(t, svc)
	ctx := context.Background()
	fillRequired(t, c)
	if err := c.AddFile(ctx, tempFile(t, "dark.fits")); err != nil {
		t.Fatalf("add file: %v", err)
	}
	if err := c.Authenticate(ctx, "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := c.Lock(ctx, "acs"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	_, err := c.Submit(ctx)
	var rejected *submission.SubmissionRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected SubmissionRejectedError, got %v", err)
	}
	if c.LockStatus() != "acs" {
		t.Fatalf("rejected submit must keep the lock, got %q", c.LockStatus())
	}
	if len(c.Files()) != 1 {
		t.Fatal("rejected submit must keep the file set")
	}
}

func TestSubmitUploadFailureSkipsPost(t *testing.T) {
	svc := &stubService{uploadErr: errors.New("staging full")}
	c := newTestClient(t, svc)
	ctx := context.Background()
	fillRequired(t, c)
	if err := c.AddFile(ctx, tempFile(t, "dark.fits")); err != nil {
		t.Fatalf("add file: %v", err)
	}
	if err := c.Authenticate(ctx, "sean", "token"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := c.Lock(ctx, "acs"); err != nil {
		t.Fatalf("lock: %v", err)
	}

	if _, err := c.Submit(ctx); err == nil {
		t.Fatal("expected upload failure to surface")
	}
	if len(svc.posts) != 0 {
		t.Fatal("upload failure must prevent the post")
	}
	if c.LockStatus() != "acs" {
		t.Fatalf("failed submit must keep the lock, got %q", c.LockStatus())
	}
}

func TestHelpDescribesEveryField(t *testing.T) {
	c := newTestClient(t, &stubService{})
	help := c.Help()
	for _, key := range c.Schema().Keys() {
		if !strings.Contains(help, key+" (") {
			t.Fatalf("help misses field %q:\n%s", key, help)
		}
	}
	if !strings.Contains(help, "Severe, Moderate, Trivial") {
		t.Fatalf("help misses choices:\n%s", help)
	}
}
