package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"flowkernel/core/events"
)

func TestDispatcherDeliversSignedEvent(t *testing.T) {
	var mu sync.Mutex
	var gotBody []byte
	var gotSig string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		mu.Lock()
		gotBody = body
		gotSig = r.Header.Get("X-Flowkernel-Signature")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	secret := []byte("s3cret")
	d, err := NewDispatcher(srv.URL, secret)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	defer d.Close()

	d.Emit(events.IntentRevoked{})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		got := len(gotBody) > 0
		mu.Unlock()
		if got {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(gotBody) == 0 {
		t.Fatal("expected a delivery")
	}
	var env envelope
	if err := json.Unmarshal(gotBody, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Type != events.TypeIntentRevoked {
		t.Fatalf("type = %s, want %s", env.Type, events.TypeIntentRevoked)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(gotBody)
	want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	if gotSig != want {
		t.Fatalf("signature mismatch: got %s want %s", gotSig, want)
	}
}
