package upstream

import (
	"context"
	"net/http"
	"testing"

	"github.com/formdesk/dashboard-gateway/internal/core/domain"
)

func TestNotificationClient_List(t *testing.T) {
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/notifications" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"n-1","type":"warning","data":{"message":"low disk"},"created_at":"2026-02-01T10:00:00Z","read_at":null},
			{"id":2,"data":{"message":"welcome"},"created_at":"bad-timestamp","read_at":"2026-02-01T11:00:00Z"}
		]}`))
	}))

	items, err := NewNotificationClient(gw).List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(items))
	}

	first := items[0]
	if first.ID != "n-1" || first.Severity != domain.SeverityWarning || first.Message != "low disk" {
		t.Fatalf("unexpected first notification: %+v", first)
	}
	if first.Read() {
		t.Fatalf("null read_at must stay unread")
	}

	second := items[1]
	if second.ID != "2" {
		t.Fatalf("numeric id must decode as string, got %q", second.ID)
	}
	if second.Severity != domain.SeverityInfo {
		t.Fatalf("missing type must default to info, got %q", second.Severity)
	}
	if !second.CreatedAt.IsZero() {
		t.Fatalf("unparseable timestamp must yield zero time, got %v", second.CreatedAt)
	}
	if !second.Read() {
		t.Fatalf("expected read notification")
	}
}

func TestNotificationClient_MarkRead(t *testing.T) {
	var path, method string
	gw := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method = r.URL.Path, r.Method
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := NewNotificationClient(gw).MarkRead(context.Background(), "n-1"); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if method != http.MethodPost || path != "/notifications/n-1/read" {
		t.Fatalf("unexpected request: %s %s", method, path)
	}
}
