package port

import "time"

// Observer receives instrumentation events from the services.
type Observer interface {
	CredentialIssued(duration time.Duration, err error)
	CredentialCacheLookup(hit bool)
	URLSigned(err error)
	ObjectUploaded(category string, sizeBytes int64, duration time.Duration, err error)
}
