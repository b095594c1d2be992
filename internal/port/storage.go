package port

import (
	"context"
	"io"
	"time"

	"ossgate/internal/domain"
)

// PutInput encapsulates the parameters needed to write an object.
type PutInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// PutOutput contains the result of a successful write.
type PutOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts the bucket the relay writes to and the provider's
// URL signing algorithm. Writes always use the server's own credential.
type ObjectStorage interface {
	Put(ctx context.Context, input PutInput) (*PutOutput, error)
	Delete(ctx context.Context, key string) error
	// PresignGet signs a GET for key with the given credential. It never
	// contacts the provider and never checks that the object exists.
	PresignGet(ctx context.Context, cred domain.Credential, key string, expires time.Duration) (string, error)
	// StaticCredential returns the server's long-lived key pair. It is only
	// ever used for signing inside the process.
	StaticCredential() domain.Credential
}
