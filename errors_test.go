package fetchdedupe

import (
	"errors"
	"fmt"
	"testing"
)

func TestCacheMissError(t *testing.T) {
	err := &CacheMissError{Key: "k"}

	if err.Error() != CacheMissMessage {
		t.Errorf("Expected message %q, got %q", CacheMissMessage, err.Error())
	}
	if err.Name() != "CacheMissError" {
		t.Errorf("Expected name CacheMissError, got %q", err.Name())
	}
	if !errors.Is(err, ErrCacheMiss) {
		t.Error("CacheMissError should match ErrCacheMiss")
	}
	if !errors.Is(err, &CacheMissError{Key: "other"}) {
		t.Error("CacheMissError should match any other cache miss")
	}
}

func TestIsCacheMissWrapped(t *testing.T) {
	wrapped := fmt.Errorf("loading book: %w", &CacheMissError{Key: "k"})

	if !IsCacheMiss(wrapped) {
		t.Error("IsCacheMiss should see through wrapping")
	}
	if IsCacheMiss(errors.New(CacheMissMessage)) {
		t.Error("IsCacheMiss should not match on message text")
	}
	if IsCacheMiss(nil) {
		t.Error("IsCacheMiss(nil) should be false")
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Problems: []string{"transport cannot be nil", "logger cannot be nil"}}
	want := "fetchdedupe: invalid configuration: transport cannot be nil; logger cannot be nil"

	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	var nilErr *ConfigError
	if nilErr.Error() != "<nil>" {
		t.Errorf("Expected <nil>, got %q", nilErr.Error())
	}
}
