package simd

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

func TestValidateCallbackURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		errType error
	}{
		{"valid external URL", "https://example.com/callback", nil},
		{"valid localhost for development", "http://localhost:8000/callback", nil},
		{"URL with run_id template", "http://localhost:8000/callback/{run_id}", nil},
		{"invalid scheme", "ftp://example.com/callback", ErrInvalidURL},
		{"missing hostname", "http:///callback", ErrInvalidURL},
		{"metadata endpoint - IP", "http://169.254.169.254/metadata", ErrMetadataEndpoint},
		{"metadata endpoint - hostname", "http://metadata.google.internal/metadata", ErrMetadataEndpoint},
		{"wildcard address", "http://0.0.0.0:8000/callback", ErrInternalHost},
		{"direct loopback IP", "http://127.0.0.1:8000/callback", ErrInternalHost},
		{"private network", "http://10.1.2.3/callback", ErrInternalHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCallbackURL(tt.url)
			if tt.errType == nil {
				if err != nil {
					t.Errorf("validateCallbackURL() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.errType) {
				t.Errorf("validateCallbackURL() error = %v, want %v", err, tt.errType)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{"public IP", "8.8.8.8", false},
		{"RFC 1918 - 10.0.0.0/8", "10.0.0.1", true},
		{"RFC 1918 - 172.16.0.0/12", "172.16.0.1", true},
		{"RFC 1918 - 192.168.0.0/16", "192.168.1.1", true},
		{"link-local", "169.254.0.1", true},
		{"loopback", "127.0.0.1", true},
		{"IPv6 loopback", "::1", true},
		{"IPv6 unique local", "fc00::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip := net.ParseIP(tt.ip)
			if ip == nil {
				t.Fatalf("failed to parse IP: %s", tt.ip)
			}
			if got := isPrivateIP(ip); got != tt.want {
				t.Errorf("isPrivateIP(%s) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

// localhostURL rewrites an httptest URL so it passes callback validation
func localhostURL(t *testing.T, serverURL, path string) string {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	return "http://localhost:" + u.Port() + path
}

func testNotifier(retries int) *Notifier {
	n := NewNotifierWithBackoff(retries, utils.NewConstantBackoff(time.Millisecond))
	n.sent = make(chan error, 4)
	return n
}

func waitSent(t *testing.T, n *Notifier) error {
	t.Helper()
	select {
	case err := <-n.sent:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func completedRecord(id string) *RunRecord {
	return &RunRecord{
		Run: models.Run{
			ID:       id,
			Scenario: "base",
			Status:   models.RunStatusCompleted,
			EndTime:  time.Now(),
			Events:   12,
			Metrics:  &models.CampaignMetrics{Scenario: "base"},
		},
	}
}

func TestNotifierNotifySuccess(t *testing.T) {
	var got NotificationPayload
	var signature, rawSecret, path string
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		signature = r.Header.Get(SignatureHeader)
		rawSecret = r.Header.Get("X-Simulation-Callback-Secret")
		path = r.URL.Path
		var err error
		if body, err = io.ReadAll(r.Body); err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := testNotifier(0)
	n.Notify(localhostURL(t, server.URL, "/callback/{run_id}"), "s3cret", completedRecord("run-123"))

	if err := waitSent(t, n); err != nil {
		t.Fatalf("expected delivery, got %v", err)
	}
	if got.RunID != "run-123" || got.Status != models.RunStatusCompleted || got.Events != 12 {
		t.Errorf("unexpected payload %+v", got)
	}
	if got.Metrics == nil || got.Metrics.Scenario != "base" {
		t.Errorf("expected metrics in payload, got %+v", got.Metrics)
	}
	if want := SignPayload("s3cret", body); signature != want {
		t.Errorf("expected signature %q, got %q", want, signature)
	}
	if rawSecret != "" {
		t.Errorf("secret must not be sent in plain text, got %q", rawSecret)
	}
	if path != "/callback/run-123" {
		t.Errorf("expected run_id template expansion, got %q", path)
	}
}

func TestNotifierRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := testNotifier(3)
	n.Notify(localhostURL(t, server.URL, "/"), "", completedRecord("run-retry"))

	if err := waitSent(t, n); err != nil {
		t.Fatalf("expected eventual delivery, got %v", err)
	}
	if c := atomic.LoadInt32(&calls); c != 3 {
		t.Errorf("expected 3 attempts, got %d", c)
	}
}

func TestNotifierGivesUp(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := testNotifier(2)
	n.Notify(localhostURL(t, server.URL, "/"), "", completedRecord("run-fail"))

	if err := waitSent(t, n); err == nil {
		t.Fatal("expected final error")
	}
	if c := atomic.LoadInt32(&calls); c != 3 {
		t.Errorf("expected 1 attempt plus 2 retries, got %d", c)
	}
}

func TestNotifierRejectsInternalCallback(t *testing.T) {
	n := testNotifier(0)
	n.Notify("http://169.254.169.254/latest", "", completedRecord("run-ssrf"))

	if err := waitSent(t, n); !errors.Is(err, ErrMetadataEndpoint) {
		t.Fatalf("expected metadata endpoint rejection, got %v", err)
	}
}

func TestNotifierNoURL(t *testing.T) {
	n := testNotifier(0)
	n.Notify("", "", completedRecord("run-none"))

	select {
	case err := <-n.sent:
		t.Fatalf("expected no delivery, got %v", err)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSignPayload(t *testing.T) {
	// Reference value from RFC 4231 test case 2.
	got := SignPayload("Jefe", []byte("what do ya want for nothing?"))
	want := "sha256=5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"
	if got != want {
		t.Errorf("SignPayload = %q, want %q", got, want)
	}
	if SignPayload("other", []byte("what do ya want for nothing?")) == want {
		t.Error("expected a different key to change the signature")
	}
}

func TestNotifierOmitsSignatureWithoutSecret(t *testing.T) {
	var signature string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := testNotifier(0)
	n.Notify(localhostURL(t, server.URL, "/"), "", completedRecord("run-unsigned"))
	if err := waitSent(t, n); err != nil {
		t.Fatalf("expected delivery, got %v", err)
	}
	if signature != "" {
		t.Errorf("expected no signature header, got %q", signature)
	}
}
