package fetchdedupe

import (
	"errors"
	"fmt"
	"strings"
)

// CacheMissName and CacheMissMessage identify a cache-only miss.
const (
	CacheMissName    = "CacheMissError"
	CacheMissMessage = "Response for fetch request not found in cache."
)

// ErrCacheMiss is matched by every *CacheMissError via errors.Is.
var ErrCacheMiss = errors.New(CacheMissMessage)

// CacheMissError is returned under CacheOnly when no entry exists for
// the request key. It is never produced by the transport.
type CacheMissError struct {
	Key string
}

// Error implements error interface.
func (e *CacheMissError) Error() string {
	return CacheMissMessage
}

// Name returns the stable error kind.
func (e *CacheMissError) Name() string {
	return CacheMissName
}

// Is reports whether target is ErrCacheMiss or another cache miss.
func (e *CacheMissError) Is(target error) bool {
	if target == ErrCacheMiss {
		return true
	}
	_, ok := target.(*CacheMissError)
	return ok
}

// IsCacheMiss reports whether err is a cache-only miss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// ConfigError reports an invalid client configuration.
type ConfigError struct {
	Problems []string
}

// Error implements error interface.
func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("fetchdedupe: invalid configuration: %s", strings.Join(e.Problems, "; "))
}
