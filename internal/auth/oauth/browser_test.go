package oauth

import (
	"testing"
)

func TestBrowserLaunchers(t *testing.T) {
	for _, platform := range []string{"linux", "darwin", "windows"} {
		launcher, ok := browserLaunchers[platform]
		if !ok {
			t.Errorf("no launcher for %s", platform)
			continue
		}
		if len(launcher) == 0 {
			t.Errorf("empty launcher for %s", platform)
		}
	}
}
