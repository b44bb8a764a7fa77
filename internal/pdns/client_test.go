package pdns

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", "test-key", "localhost")
}

func TestGetZoneSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.URL.Path != "/api/v1/servers/localhost/zones/alice.example.com." {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Zone{
			Name: "alice.example.com.",
			Kind: KindNative,
			RRsets: []RRset{
				{Name: "alice.example.com.", Type: "NS", TTL: 3600, Records: []Record{{Content: "ns1.example.net."}}},
			},
		})
	})

	zone, err := client.GetZone(context.Background(), "alice.example.com.")
	if err != nil {
		t.Fatalf("GetZone: %v", err)
	}
	if zone.Name != "alice.example.com." || len(zone.RRsets) != 1 {
		t.Fatalf("unexpected zone: %+v", zone)
	}
}

func TestGetZoneNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetZone(context.Background(), "ghost.example.com.")
	if !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateZoneConflict(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	err := client.CreateZone(context.Background(), ZoneCreate{Name: "alice.example.com.", Kind: KindNative})
	if !IsConflict(err) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCreateZoneSuccess(t *testing.T) {
	var gotBody ZoneCreate
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	err := client.CreateZone(context.Background(), ZoneCreate{
		Name:        "alice.example.com.",
		Kind:        KindNative,
		Nameservers: []string{"ns1.example.net."},
	})
	if err != nil {
		t.Fatalf("CreateZone: %v", err)
	}
	if gotBody.Name != "alice.example.com." {
		t.Fatalf("unexpected body sent: %+v", gotBody)
	}
}

func TestPatchRRsetsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.PatchRRsets(context.Background(), "alice.example.com.", []RRset{
		{Name: "www.alice.example.com.", Type: "A", TTL: 300, ChangeType: ChangeTypeReplace,
			Records: []Record{{Content: "192.0.2.1"}}},
	})
	if err != nil {
		t.Fatalf("PatchRRsets: %v", err)
	}
}

func TestDeleteZoneSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.DeleteZone(context.Background(), "alice.example.com."); err != nil {
		t.Fatalf("DeleteZone: %v", err)
	}
}

func TestUnreachableWrapsTransportError(t *testing.T) {
	client := New("http://127.0.0.1:1", "key", "localhost")
	_, err := client.GetZone(context.Background(), "alice.example.com.")
	if err == nil {
		t.Fatal("expected transport error")
	}
	var unreachable *ErrUnreachable
	if !asUnreachable(err, &unreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

func asUnreachable(err error, target **ErrUnreachable) bool {
	e, ok := err.(*ErrUnreachable)
	if !ok {
		return false
	}
	*target = e
	return true
}
