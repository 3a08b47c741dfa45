package scm

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrRemoteNotSupported is returned when a remote repository URI is provided.
var ErrRemoteNotSupported = errors.New("remote repositories not supported")

var remoteURIPattern = regexp.MustCompile(`^[A-Za-z]\w*@[A-Za-z0-9][\w.]*:`)

// LoadRepository opens a local git repository. Returns an error for remote
// URIs; this is a read-only local browser with no networking or sync
// component.
func LoadRepository(uri string) (*Repository, error) {
	if strings.Contains(uri, "://") || remoteURIPattern.MatchString(uri) {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotSupported, uri)
	}

	if len(uri) > 0 && uri[len(uri)-1] == os.PathSeparator {
		uri = uri[:len(uri)-1]
	}

	repository, err := OpenRepository(uri)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", uri, err)
	}

	return repository, nil
}
