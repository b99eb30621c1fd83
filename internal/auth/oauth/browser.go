package oauth

import (
	"fmt"
	"os/exec"
	"runtime"
)

// browserLaunchers maps a platform to the command that hands a URL to
// the default browser.
var browserLaunchers = map[string][]string{
	"linux":   {"xdg-open"},
	"darwin":  {"open"},
	"windows": {"cmd", "/c", "start"},
}

// OpenBrowser hands the URL to the platform's launcher without waiting
// for it. Login carries on when this fails; the authorization URL is
// surfaced separately so the user can open it by hand.
func OpenBrowser(url string) error {
	launcher, ok := browserLaunchers[runtime.GOOS]
	if !ok {
		return fmt.Errorf("no browser launcher for %s, open the URL manually", runtime.GOOS)
	}
	args := append(launcher[1:], url)
	if err := exec.Command(launcher[0], args...).Start(); err != nil {
		return fmt.Errorf("%s failed, open the URL manually: %w", launcher[0], err)
	}
	return nil
}
