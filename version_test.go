package fetchdedupe

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	v := GetVersion()
	if !strings.Contains(v, Version) {
		t.Errorf("Expected version string to contain %q, got %q", Version, v)
	}

	info := GetVersionInfo()
	for _, key := range []string{"version", "commit", "build_date", "go_version"} {
		if _, ok := info[key]; !ok {
			t.Errorf("Expected key %q in version info", key)
		}
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "fetchdedupe/") {
		t.Errorf("Expected fetchdedupe/ prefix, got %q", ua)
	}
	if strings.Contains(ua, "/v") {
		t.Errorf("Expected version without leading v, got %q", ua)
	}
}
