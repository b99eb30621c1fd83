package oauth

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func startTestServer(t *testing.T) (*CallbackServer, string, context.CancelFunc) {
	t.Helper()
	server := NewCallbackServer(0)
	ctx, cancel := context.WithCancel(context.Background())

	callbackURL, err := server.Start(ctx)
	if err != nil {
		cancel()
		t.Skipf("Could not start callback server (port may be in use): %v", err)
	}
	return server, callbackURL, cancel
}

func TestCallbackServer_HandleCallback_Success(t *testing.T) {
	server, callbackURL, cancel := startTestServer(t)
	defer cancel()
	defer server.Stop()

	go func() {
		time.Sleep(100 * time.Millisecond)
		resp, err := http.Get(callbackURL + "?code=test-code&state=test-state")
		if err != nil {
			return
		}
		resp.Body.Close()
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()

	result, err := server.WaitForCallback(waitCtx)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}

	if result.Code != "test-code" {
		t.Errorf("expected code 'test-code', got %q", result.Code)
	}
	if result.State != "test-state" {
		t.Errorf("expected state 'test-state', got %q", result.State)
	}
	if result.IsError() {
		t.Error("expected success, but IsError() returned true")
	}
}

func TestCallbackServer_HandleCallback_Error(t *testing.T) {
	server, callbackURL, cancel := startTestServer(t)
	defer cancel()
	defer server.Stop()

	go func() {
		time.Sleep(100 * time.Millisecond)
		resp, err := http.Get(callbackURL + "?error=access_denied&error_description=User+denied+access")
		if err != nil {
			return
		}
		resp.Body.Close()
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()

	result, err := server.WaitForCallback(waitCtx)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}

	if !result.IsError() {
		t.Error("expected error result")
	}
	if result.Error != "access_denied" {
		t.Errorf("expected error 'access_denied', got %q", result.Error)
	}
	if result.ErrorDescription != "User denied access" {
		t.Errorf("expected description 'User denied access', got %q", result.ErrorDescription)
	}
}

func TestCallbackServer_WaitForCallback_Timeout(t *testing.T) {
	server, _, cancel := startTestServer(t)
	defer cancel()
	defer server.Stop()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer waitCancel()

	result, err := server.WaitForCallback(waitCtx)
	if err != context.DeadlineExceeded {
		t.Errorf("expected context.DeadlineExceeded, got: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result on timeout, got: %+v", result)
	}
}

func TestCallbackServer_RedirectURI(t *testing.T) {
	server, _, cancel := startTestServer(t)
	defer cancel()
	defer server.Stop()

	redirectURI := server.RedirectURI()
	if !strings.HasPrefix(redirectURI, "http://127.0.0.1:") {
		t.Errorf("redirect URI should start with 'http://127.0.0.1:', got: %s", redirectURI)
	}
	if !strings.HasSuffix(redirectURI, "/callback") {
		t.Errorf("redirect URI should end with '/callback', got: %s", redirectURI)
	}
	if server.Port() == 0 {
		t.Error("expected non-zero port after start")
	}
}

func TestCallbackServer_SecondCallbackRejected(t *testing.T) {
	server, callbackURL, cancel := startTestServer(t)
	defer cancel()
	defer server.Stop()

	go func() {
		time.Sleep(100 * time.Millisecond)
		resp, err := http.Get(callbackURL + "?code=first-code&state=s1")
		if err == nil {
			resp.Body.Close()
		}
	}()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()

	result, err := server.WaitForCallback(waitCtx)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if result.Code != "first-code" {
		t.Errorf("expected first code, got %q", result.Code)
	}

	resp, err := http.Get(callbackURL + "?code=second-code&state=s2")
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Logf("second callback got status %d (expected 400)", resp.StatusCode)
		}
	}
}

func TestCallbackServer_Stop_Idempotent(t *testing.T) {
	server, _, cancel := startTestServer(t)
	defer cancel()

	server.Stop()
	server.Stop()
}
