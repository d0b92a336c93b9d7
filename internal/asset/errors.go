package asset

import "errors"

var (
	// ErrUnsupportedType is returned for identifiers whose extension has no loader.
	ErrUnsupportedType = errors.New("unsupported asset type")
	// ErrNotFound is returned when neither search root contains the file.
	ErrNotFound = errors.New("asset file not found")
	// ErrMalformedIdentifier is returned for identifiers with an empty base path.
	ErrMalformedIdentifier = errors.New("malformed asset identifier")
	// ErrUnknownKey is returned when a key has no record.
	ErrUnknownKey = errors.New("unknown asset key")
	// ErrNullHandle is returned when resolving a released or moved-from handle.
	ErrNullHandle = errors.New("null asset handle")
	// ErrSubAssetNotFound is returned when the parent has no sub-asset by that name.
	ErrSubAssetNotFound = errors.New("sub-asset not found")
	// ErrTypeMismatch is returned by Get when the loaded asset has a different type.
	ErrTypeMismatch = errors.New("asset type mismatch")
	// ErrLoadFailed wraps errors returned by a loader.
	ErrLoadFailed = errors.New("asset load failed")
)
