package simd

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/logger"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/models"
	"github.com/GoSim-25-26J-441/vaccination-sim/pkg/utils"
)

var (
	ErrInvalidURL       = errors.New("invalid callback URL")
	ErrMetadataEndpoint = errors.New("callback URL points at a cloud metadata endpoint")
	ErrInternalHost     = errors.New("callback URL points at an internal address")
)

// SignatureHeader carries the HMAC-SHA256 of the request body keyed by the
// run's callback secret, formatted as "sha256=<hex>".
const SignatureHeader = "X-Simulation-Signature"

// SignPayload returns the SignatureHeader value for body
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// NotificationPayload represents the JSON payload sent to the callback URL
type NotificationPayload struct {
	RunID        string                  `json:"run_id"`
	Scenario     string                  `json:"scenario"`
	Status       models.RunStatus        `json:"status"`
	StopReason   string                  `json:"stop_reason,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	EndTime      time.Time               `json:"end_time"`
	Events       int                     `json:"events"`
	DaysLaunched int                     `json:"days_launched"`
	Error        string                  `json:"error,omitempty"`
	Metrics      *models.CampaignMetrics `json:"metrics,omitempty"`
	Timestamp    int64                   `json:"timestamp"` // When notification was sent
}

// Notifier posts run completion to client callbacks
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	backoff    utils.BackoffStrategy
	// sent receives the outcome of every delivery; tests only
	sent chan error
}

// NewNotifier creates a new notification service
func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxRetries: 3,
		backoff:    utils.NewExponentialBackoff(time.Second, 30*time.Second, 2, nil),
	}
}

// NewNotifierWithBackoff creates a notifier with a custom retry policy
func NewNotifierWithBackoff(maxRetries int, backoff utils.BackoffStrategy) *Notifier {
	n := NewNotifier()
	n.maxRetries = maxRetries
	n.backoff = backoff
	return n
}

// Notify sends a notification to the callback URL asynchronously
func (n *Notifier) Notify(callbackURL string, callbackSecret string, rec *RunRecord) {
	if callbackURL == "" {
		return
	}
	if rec == nil {
		logger.Warn("cannot notify: invalid run record", "callback_url", callbackURL)
		return
	}
	if err := validateCallbackURL(callbackURL); err != nil {
		logger.Warn("refusing callback", "run_id", rec.Run.ID, "callback_url", callbackURL, "error", err)
		n.report(err)
		return
	}

	finalURL := strings.ReplaceAll(callbackURL, "{run_id}", rec.Run.ID)
	payload := NotificationPayload{
		RunID:        rec.Run.ID,
		Scenario:     rec.Run.Scenario,
		Status:       rec.Run.Status,
		StopReason:   rec.Run.StopReason,
		CreatedAt:    rec.Run.CreatedAt,
		EndTime:      rec.Run.EndTime,
		Events:       rec.Run.Events,
		DaysLaunched: rec.Run.DaysLaunched,
		Error:        rec.Run.Error,
		Metrics:      rec.Run.Metrics,
		Timestamp:    time.Now().UTC().UnixMilli(),
	}

	go func() {
		n.report(n.sendNotification(finalURL, callbackSecret, payload))
	}()
}

func (n *Notifier) report(err error) {
	if n.sent != nil {
		n.sent <- err
	}
}

// sendNotification performs the HTTP POST with retries
func (n *Notifier) sendNotification(callbackURL string, callbackSecret string, payload NotificationPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"error", err)
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.backoff.NextDelay(attempt - 1)
			logger.Debug("retrying notification",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(payloadJSON))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", "vaccination-sim/1.0")
		if callbackSecret != "" {
			req.Header.Set(SignatureHeader, SignPayload(callbackSecret, payloadJSON))
		}

		resp, err := n.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			logger.Warn("notification attempt failed",
				"callback_url", callbackURL,
				"run_id", payload.RunID,
				"attempt", attempt+1,
				"error", err)
			continue
		}

		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		responseBody := string(bodyBytes)
		if len(responseBody) > 200 {
			responseBody = responseBody[:200] + "..."
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("notification sent successfully",
				"run_id", payload.RunID,
				"status", payload.Status,
				"status_code", resp.StatusCode)
			return nil
		}

		lastErr = fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		logger.Warn("notification returned non-2xx status",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"status_code", resp.StatusCode,
			"response_body", responseBody,
			"attempt", attempt+1)
	}

	logger.Error("failed to send notification after retries",
		"callback_url", callbackURL,
		"run_id", payload.RunID,
		"status", payload.Status,
		"max_retries", n.maxRetries,
		"last_error", lastErr)
	return lastErr
}

var metadataHosts = map[string]bool{
	"169.254.169.254":          true,
	"metadata.google.internal": true,
	"metadata":                 true,
	"fd00:ec2::254":            true,
}

// validateCallbackURL rejects callbacks that could reach infrastructure the
// daemon runs next to. The hostname localhost is accepted for development.
func validateCallbackURL(raw string) error {
	u, err := url.Parse(strings.ReplaceAll(raw, "{run_id}", "run"))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("%w: missing hostname", ErrInvalidURL)
	}
	if metadataHosts[host] {
		return ErrMetadataEndpoint
	}
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsUnspecified() || isPrivateIP(ip) {
			return fmt.Errorf("%w: %s", ErrInternalHost, host)
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
