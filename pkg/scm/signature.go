package scm

import (
	"strings"
	"time"
)

// Signature is a commit's author or committer identity: a display name, an
// email address, and the instant the signature was made.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// DisplayUser returns Name when set, otherwise the local part of Email (the
// text before '@'), the same "<email> → local-part" fallback a timeline row
// applies when a commit carries no separate display name.
func (s Signature) DisplayUser() string {
	if s.Name != "" {
		return s.Name
	}

	if at := strings.IndexByte(s.Email, '@'); at > 0 {
		return s.Email[:at]
	}

	return s.Email
}
