package submission

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/sean-lockwood/crimson-ins-submit/record"
	"github.com/sean-lockwood/crimson-ins-submit/schema"
)

// instrumentKey is the record field compared against the held lock.
const instrumentKey = "instrument"

// Client prepares, validates and submits one calibration delivery. It owns
// its schema, record, file set and session; it is not safe for concurrent
// use, and independent submissions need independent clients.
type Client struct {
	observatory Observatory
	environment Environment

	schema  *schema.Schema
	record  *record.Record
	files   *FileSet
	session *Session
	svc     Service
	log     *zap.Logger
}

// Option configures a client.
type Option func(*options)

type options struct {
	endpoints  Endpoints
	httpClient *http.Client
	log        *zap.Logger
}

// WithEndpoints overrides the server base-URL table.
func WithEndpoints(e Endpoints) Option {
	return func(o *options) { o.endpoints = e }
}

// WithHTTPClient sets the HTTP client used to fetch the form description.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the client logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// Open fetches the observatory's form description from the configured
// environment and builds a client around it.
func Open(ctx context.Context, obs Observatory, env Environment, svc Service, opts ...Option) (*Client, error) {
	o := applyOptions(opts)
	base, err := o.endpoints.BaseURL(env, obs)
	if err != nil {
		return nil, err
	}
	s, err := schema.Load(ctx, o.httpClient, base)
	if err != nil {
		return nil, err
	}
	return newClient(obs, env, s, svc, o)
}

// New builds a client from an already-loaded schema. Open is the usual
// entry point; New serves callers that fetched or built the schema
// themselves.
func New(obs Observatory, env Environment, s *schema.Schema, svc Service, opts ...Option) (*Client, error) {
	return newClient(obs, env, s, svc, applyOptions(opts))
}

func applyOptions(opts []Option) *options {
	o := &options{
		endpoints: DefaultEndpoints(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newClient(obs Observatory, env Environment, s *schema.Schema, svc Service, o *options) (*Client, error) {
	rec, err := record.New(s)
	if err != nil {
		return nil, err
	}
	return &Client{
		observatory: obs,
		environment: env,
		schema:      s,
		record:      rec,
		files:       newFileSet(svc),
		session:     newSession(obs),
		svc:         svc,
		log:         o.log,
	}, nil
}

// Observatory returns the observatory the client was opened for.
func (c *Client) Observatory() Observatory { return c.observatory }

// Environment returns the environment the client was opened for.
func (c *Client) Environment() Environment { return c.environment }

// Schema returns the form schema.
func (c *Client) Schema() *schema.Schema { return c.schema }

// Record returns the submission record.
func (c *Client) Record() *record.Record { return c.record }

// Session returns the authentication/lock session.
func (c *Client) Session() *Session { return c.session }

// Username returns the authenticated username, or Unauthenticated.
func (c *Client) Username() string { return c.session.Identity() }

// LockStatus returns the locked instrument, or Unlocked.
func (c *Client) LockStatus() string { return c.session.LockStatus() }

// Set stores a validated field value.
func (c *Client) Set(key string, value any) error { return c.record.Set(key, value) }

// Get returns a field value.
func (c *Client) Get(key string) (any, error) { return c.record.Get(key) }

// Reset restores a field to its default.
func (c *Client) Reset(key string) error { return c.record.Reset(key) }

// AddFile attaches a file to the submission after certifying it.
func (c *Client) AddFile(ctx context.Context, path string) error {
	return c.files.Add(ctx, path)
}

// RemoveFile detaches a previously attached file.
func (c *Client) RemoveFile(path string) error { return c.files.Remove(path) }

// Files returns the attached file paths.
func (c *Client) Files() []string { return c.files.Snapshot() }

// YAML returns the record's ordered document representation.
func (c *Client) YAML() (string, error) { return c.record.YAML() }

// Authenticate logs in to the server. On rejection the session is
// unchanged.
func (c *Client) Authenticate(ctx context.Context, username, key string) error {
	if err := c.svc.Login(ctx, username, key); err != nil {
		return &AuthenticationFailedError{Username: username, Err: err}
	}
	c.log.Info("authenticated", zap.String("username", username))
	return c.session.loggedIn(ctx, username)
}

// Logout ends the session. It refuses while an instrument lock is held;
// unlock first so the server-side lock is not orphaned.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.session.checkLogout(); err != nil {
		return err
	}
	if err := c.svc.Logout(ctx); err != nil {
		return err
	}
	return c.session.loggedOut(ctx)
}

// Lock acquires the exclusive edit lock for instrument. Re-locking the
// held instrument is a no-op; locking a different one is refused.
func (c *Client) Lock(ctx context.Context, instrument string) error {
	if err := c.session.checkLock(instrument); err != nil {
		return err
	}
	if c.session.HoldsLock(instrument) {
		return nil
	}
	if err := c.svc.Lock(ctx, instrument); err != nil {
		return err
	}
	c.log.Info("instrument locked", zap.String("instrument", instrument))
	return c.session.locked(ctx, instrument)
}

// Unlock drops the held instrument lock.
func (c *Client) Unlock(ctx context.Context) error {
	if err := c.session.checkUnlock(); err != nil {
		return err
	}
	if err := c.svc.Unlock(ctx, c.session.LockStatus()); err != nil {
		return err
	}
	return c.session.released(ctx)
}

// Validate checks the submission for completeness. It is read-only, has no
// side effects and performs no network calls, so it can be called any
// number of times.
func (c *Client) Validate() error {
	if err := c.checkKeys(); err != nil {
		return err
	}
	if empty := c.emptyRequired(); len(empty) > 0 {
		return &EmptyRequiredFieldsError{Keys: empty}
	}
	if err := c.checkLockedInstrument(); err != nil {
		return err
	}
	if c.files.Len() == 0 {
		return ErrNoFilesAttached
	}
	return nil
}

// checkKeys confirms the record's key set is still exactly the schema's.
// Record guarantees this; drift means a programming error.
func (c *Client) checkKeys() error {
	want := c.schema.Keys()
	got := c.record.Keys()
	if len(want) == len(got) {
		same := true
		for i := range want {
			if want[i] != got[i] {
				same = false
				break
			}
		}
		if same {
			return nil
		}
	}
	seen := make(map[string]bool, len(got))
	for _, k := range got {
		seen[k] = true
	}
	mismatch := &SchemaMismatchError{}
	for _, k := range want {
		if !seen[k] {
			mismatch.Missing = append(mismatch.Missing, k)
		}
		delete(seen, k)
	}
	for k := range seen {
		mismatch.Extra = append(mismatch.Extra, k)
	}
	return mismatch
}

// emptyRequired collects every required field still holding empty text.
// A false boolean is a legitimate value and is never flagged.
func (c *Client) emptyRequired() []string {
	var empty []string
	for _, key := range c.schema.Required() {
		v, err := c.record.Get(key)
		if err != nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			empty = append(empty, key)
		}
	}
	return empty
}

// checkLockedInstrument confirms the record updates the instrument the
// session actually holds.
func (c *Client) checkLockedInstrument() error {
	if c.session.LockStatus() == Unlocked || !c.schema.Has(instrumentKey) {
		return nil
	}
	v, err := c.record.Get(instrumentKey)
	if err != nil {
		return err
	}
	reported, _ := v.(string)
	if reported != c.session.LockStatus() {
		return &LockMismatchError{Locked: c.session.LockStatus(), Reported: reported}
	}
	return nil
}

// Submit validates the submission, uploads the attached files and posts the
// serialized record. On any failure the record, file set and session are
// left untouched so the caller can fix the cause and retry. On success the
// server drops the instrument lock and the session mirrors that.
func (c *Client) Submit(ctx context.Context) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if err := c.svc.Upload(ctx, c.files.Snapshot()); err != nil {
		return "", err
	}
	doc, err := c.record.YAML()
	if err != nil {
		return "", err
	}
	id, err := c.svc.PostSubmission(ctx, []byte(doc))
	if err != nil {
		return "", &SubmissionRejectedError{Err: err}
	}
	c.log.Info("submission accepted", zap.String("id", id))
	if c.session.LockStatus() != Unlocked {
		if err := c.session.released(ctx); err != nil {
			return id, err
		}
	}
	return id, nil
}

// ResetRecord replaces the record with a freshly constructed one against
// the same schema, for starting another submission after a success.
func (c *Client) ResetRecord() error {
	rec, err := record.New(c.schema)
	if err != nil {
		return err
	}
	c.record = rec
	return nil
}
