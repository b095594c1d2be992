package domain

import "errors"

var (
	ErrCredentialIssuance   = errors.New("upload credentials unavailable")
	ErrSigning              = errors.New("signed url unavailable")
	ErrPayloadTooLarge      = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrTooManyFiles         = errors.New("too many files in one submission")
	ErrMissingFile          = errors.New("no file received")
	ErrInvalidPath          = errors.New("invalid object path")
	ErrInvalidOwner         = errors.New("invalid owner id")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrUploadFailed         = errors.New("file upload to storage failed")
)
