package submission

import (
	"context"
	"os"
	"sort"
)

// FileSet is the set of distinct file paths attached to a submission. Every
// add verifies local readability and runs the certify collaborator before
// the path is admitted. Adding a path that is already present is a no-op.
type FileSet struct {
	certify Certifier
	paths   map[string]struct{}
}

func newFileSet(certify Certifier) *FileSet {
	return &FileSet{
		certify: certify,
		paths:   make(map[string]struct{}),
	}
}

// Add attaches a file to the submission.
func (f *FileSet) Add(ctx context.Context, path string) error {
	if _, ok := f.paths[path]; ok {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		return &FileNotReadableError{Path: path, Err: err}
	}
	file.Close()

	if err := f.certify.Certify(ctx, path); err != nil {
		return &CertificationFailedError{Path: path, Err: err}
	}
	f.paths[path] = struct{}{}
	return nil
}

// Remove detaches a previously added file.
func (f *FileSet) Remove(path string) error {
	if _, ok := f.paths[path]; !ok {
		return &UnknownFileError{Path: path}
	}
	delete(f.paths, path)
	return nil
}

// Len returns the number of attached files.
func (f *FileSet) Len() int { return len(f.paths) }

// Snapshot returns a sorted copy of the attached paths. Mutating the copy
// does not affect the set.
func (f *FileSet) Snapshot() []string {
	out := make([]string, 0, len(f.paths))
	for p := range f.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
