// Package objectkey generates and validates bucket object keys.
package objectkey

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"ossgate/internal/domain"
)

const suffixLen = 12

var ownerPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidOwner reports whether id can be embedded in an object key.
func ValidOwner(id string) bool {
	return ownerPattern.MatchString(id)
}

// Avatar returns {prefix}/{owner}_{millis}.{ext}.
func Avatar(prefix, ownerID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%s_%d.%s", strings.Trim(prefix, "/"), ownerID, at.UnixMilli(), ext)
}

// PropertyImage returns {prefix}/{owner}/{millis}_{suffix}.{ext}. The random
// suffix keeps keys unique when several uploads share a millisecond.
func PropertyImage(prefix, ownerID string, at time.Time, ext string) string {
	return fmt.Sprintf("%s/%s/%d_%s.%s", strings.Trim(prefix, "/"), ownerID, at.UnixMilli(), Suffix(), ext)
}

// Suffix returns 12 random hex characters taken from a v4 UUID.
func Suffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
}

// Clean normalises a stored object path and rejects anything that is not a
// plain relative key.
func Clean(path string) (string, error) {
	p := strings.TrimLeft(strings.TrimSpace(path), "/")
	if p == "" || len(p) > 1023 {
		return "", domain.ErrInvalidPath
	}
	if strings.ContainsAny(p, "\\\x00") {
		return "", domain.ErrInvalidPath
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." {
			return "", domain.ErrInvalidPath
		}
	}
	return p, nil
}

// CleanPrefix validates a credential scope prefix. An empty prefix is allowed
// and a non-empty one always ends in "/".
func CleanPrefix(prefix string) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", nil
	}
	p, err := Clean(prefix)
	if err != nil {
		return "", err
	}
	if strings.ContainsAny(p, "*?") {
		return "", domain.ErrInvalidPath
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p, nil
}
