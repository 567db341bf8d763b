package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datingassistent/payments/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestHTTPNotifierSendWelcome(t *testing.T) {
	var captured notificationPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/notifications" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL, testLogger())
	user := &model.User{ID: 1, Email: "user@example.com", Name: "Ann"}

	if err := notifier.SendWelcome(context.Background(), user, "tmp-secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Kind != "welcome_email" || captured.Email != "user@example.com" {
		t.Fatalf("unexpected payload %+v", captured)
	}
	if captured.TemporaryPassword != "tmp-secret" {
		t.Fatal("temporary password missing from welcome payload")
	}
}

func TestHTTPNotifierNotifyStaff(t *testing.T) {
	var captured notificationPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL, testLogger())
	order := &model.Order{ID: "order-1", PackageType: "premium", Amount: 2999, Currency: "EUR"}
	user := &model.User{ID: 1, Email: "user@example.com"}

	if err := notifier.NotifyStaff(context.Background(), order, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Kind != "new_customer" || captured.OrderID != "order-1" {
		t.Fatalf("unexpected payload %+v", captured)
	}
	if captured.Amount != 2999 || captured.Currency != "EUR" {
		t.Fatalf("order details missing from payload %+v", captured)
	}
}

func TestHTTPNotifierEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewHTTPNotifier(server.URL, testLogger())
	if err := notifier.SendWelcome(context.Background(), &model.User{Email: "a@b.com"}, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestNopNotifier(t *testing.T) {
	var n NopNotifier
	if err := n.SendWelcome(context.Background(), &model.User{}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.NotifyStaff(context.Background(), &model.Order{}, &model.User{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
