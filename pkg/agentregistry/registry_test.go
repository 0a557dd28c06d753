package agentregistry

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func testRegistryRoundTrip(t *testing.T, store Registry) {
	t.Helper()

	added, err := store.Add("http://localhost:9000", []Header{{Key: "Authorization", Value: "Bearer token"}})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if !strings.HasPrefix(added.ID, "agent-") {
		t.Errorf("expected agent- id prefix, got %s", added.ID)
	}
	if added.AddedAt.IsZero() {
		t.Error("expected AddedAt to be set")
	}

	got, err := store.Get(added.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.URL != "http://localhost:9000" {
		t.Errorf("unexpected url: %s", got.URL)
	}
	if len(got.Headers) != 1 || got.Headers[0].Key != "Authorization" {
		t.Errorf("headers not preserved: %+v", got.Headers)
	}

	if err := store.UpdateURL(added.ID, "http://localhost:9001"); err != nil {
		t.Fatalf("UpdateURL failed: %v", err)
	}
	got, _ = store.Get(added.ID)
	if got.URL != "http://localhost:9001" {
		t.Errorf("url not updated: %s", got.URL)
	}

	if err := store.UpdateHeaders(added.ID, []Header{{Key: "X-Api-Key", Value: "k"}}); err != nil {
		t.Fatalf("UpdateHeaders failed: %v", err)
	}
	got, _ = store.Get(added.ID)
	if len(got.Headers) != 1 || got.Headers[0].Key != "X-Api-Key" {
		t.Errorf("headers not updated: %+v", got.Headers)
	}

	if err := store.Remove(added.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := store.Get(added.ID); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("expected ErrAgentNotFound after remove, got %v", err)
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	testRegistryRoundTrip(t, NewMemoryStore())
}

func TestSQLStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLStore(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	testRegistryRoundTrip(t, store)
}

func TestMemoryStoreDefaults(t *testing.T) {
	store := NewMemoryStoreWithDefaults()

	agents, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("expected 2 default agents, got %d", len(agents))
	}
	if agents[0].ID != "onenote-search-agent" || agents[1].ID != "outlook-schedule-agent" {
		t.Errorf("unexpected default agents: %s, %s", agents[0].ID, agents[1].ID)
	}
	if agents[1].URL != "http://outlook-schedule-agent:8000" {
		t.Errorf("unexpected default url: %s", agents[1].URL)
	}
}

func TestMemoryStorePreservesInsertionOrder(t *testing.T) {
	store := NewMemoryStore()

	first, _ := store.Add("http://a:8000", nil)
	second, _ := store.Add("http://b:8000", nil)
	third, _ := store.Add("http://c:8000", nil)

	if err := store.Remove(second.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	agents, _ := store.List()
	if len(agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(agents))
	}
	if agents[0].ID != first.ID || agents[1].ID != third.ID {
		t.Errorf("order not preserved after removal")
	}
}

func TestMemoryStoreDuplicateURLsAllowed(t *testing.T) {
	store := NewMemoryStore()

	a, err := store.Add("http://same:8000", nil)
	if err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	b, err := store.Add("http://same:8000", nil)
	if err != nil {
		t.Fatalf("second Add failed: %v", err)
	}
	if a.ID == b.ID {
		t.Error("expected distinct ids for duplicate urls")
	}
}

func TestMemoryStoreListReturnsCopies(t *testing.T) {
	store := NewMemoryStoreWithDefaults()

	agents, _ := store.List()
	agents[0].URL = "http://mutated:1"

	fresh, _ := store.List()
	if fresh[0].URL == "http://mutated:1" {
		t.Error("List must not expose internal state")
	}
}

func TestSQLStoreSeedsDefaults(t *testing.T) {
	store, err := OpenSQLStore(filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	agents, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(agents) != 2 {
		t.Fatalf("expected 2 seeded agents, got %d", len(agents))
	}
}

func TestSQLStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := OpenSQLStore(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	added, err := store.Add("http://persist:8000", []Header{{Key: "X-Tenant", Value: "contoso"}})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	store.Close()

	reopened, err := OpenSQLStore(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(added.ID)
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if got.URL != "http://persist:8000" {
		t.Errorf("unexpected url after reopen: %s", got.URL)
	}
	if len(got.Headers) != 1 || got.Headers[0].Value != "contoso" {
		t.Errorf("headers lost across reopen: %+v", got.Headers)
	}

	// Seeding must not run again for a non-empty database.
	agents, _ := reopened.List()
	if len(agents) != 3 {
		t.Errorf("expected 3 agents after reopen, got %d", len(agents))
	}
}

func TestRegistryErrorFormat(t *testing.T) {
	err := NewRegistryError("MemoryStore", "Get", "agent-123", ErrAgentNotFound)

	msg := err.Error()
	if !strings.Contains(msg, "[MemoryStore:Get]") {
		t.Errorf("expected component:action prefix, got %s", msg)
	}
	if !errors.Is(err, ErrAgentNotFound) {
		t.Error("expected errors.Is to match ErrAgentNotFound")
	}
}
