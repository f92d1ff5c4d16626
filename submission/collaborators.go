package submission

import "context"

// The client treats certification, file transport, submission posting and
// credential verification as external collaborators. The api package ships
// the HTTP implementation; tests substitute their own.

// Certifier checks a candidate delivery file before it joins the file set.
type Certifier interface {
	Certify(ctx context.Context, path string) error
}

// Uploader moves the attached files into server-side staging.
type Uploader interface {
	Upload(ctx context.Context, paths []string) error
}

// Poster delivers the serialized record and returns the server-assigned
// submission id.
type Poster interface {
	PostSubmission(ctx context.Context, document []byte) (string, error)
}

// Authenticator verifies credentials and manages the server-side
// per-instrument lock.
type Authenticator interface {
	Login(ctx context.Context, username, key string) error
	Logout(ctx context.Context) error
	Lock(ctx context.Context, instrument string) error
	Unlock(ctx context.Context, instrument string) error
}

// Service bundles every collaborator a client needs.
type Service interface {
	Certifier
	Uploader
	Poster
	Authenticator
}
