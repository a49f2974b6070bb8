// ABOUTME: Unit tests for the sandbox record store.
// ABOUTME: Covers CRUD, filters, pagination, wipe, and request logging.

package sandbox

import (
	"errors"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAssignsID(t *testing.T) {
	s := setupTestStore(t)

	record, err := s.Insert("customers", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id, _ := record["id"].(string)
	if id == "" {
		t.Fatal("expected generated id")
	}

	fetched, err := s.Get("customers", id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fetched["name"] != "Ada" {
		t.Errorf("expected stored name, got %v", fetched["name"])
	}
}

func TestInsertKeepsProvidedID(t *testing.T) {
	s := setupTestStore(t)

	record, err := s.Insert("customers", map[string]any{"id": "cus_1", "name": "Ada"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if record["id"] != "cus_1" {
		t.Errorf("expected provided id to be kept, got %v", record["id"])
	}
}

func TestGetMissingRecord(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get("customers", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	s := setupTestStore(t)

	for i, status := range []string{"pending", "shipped", "pending", "pending"} {
		_, err := s.Insert("orders", map[string]any{"id": string(rune('a' + i)), "status": status})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	pending, err := s.List("orders", 0, 0, map[string]string{"status": "pending"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 3 {
		t.Errorf("expected 3 pending orders, got %d", len(pending))
	}

	page, err := s.List("orders", 2, 1, map[string]string{"status": "pending"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected limit applied after offset, got %d records", len(page))
	}

	beyond, err := s.List("orders", 10, 100, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(beyond) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(beyond))
	}
}

func TestUpdateMergesPartial(t *testing.T) {
	s := setupTestStore(t)

	s.Insert("orders", map[string]any{"id": "ord_1", "status": "pending", "total": 10.0})
	record, err := s.Update("orders", "ord_1", map[string]any{"status": "shipped"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if record["status"] != "shipped" {
		t.Errorf("expected status updated, got %v", record["status"])
	}
	if record["total"] != 10.0 {
		t.Errorf("expected untouched field preserved, got %v", record["total"])
	}
}

func TestUpdateCannotChangeID(t *testing.T) {
	s := setupTestStore(t)

	s.Insert("orders", map[string]any{"id": "ord_1", "status": "pending"})
	record, err := s.Update("orders", "ord_1", map[string]any{"id": "ord_2"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if record["id"] != "ord_1" {
		t.Errorf("identity must be immutable, got %v", record["id"])
	}
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)

	s.Insert("customers", map[string]any{"id": "cus_1"})
	if err := s.Delete("customers", "cus_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete("customers", "cus_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestResourcesAreIsolated(t *testing.T) {
	s := setupTestStore(t)

	s.Insert("customers", map[string]any{"id": "x"})
	s.Insert("orders", map[string]any{"id": "x"})

	count, err := s.Count("customers")
	if err != nil || count != 1 {
		t.Errorf("expected 1 customer, got %d (err %v)", count, err)
	}
}

func TestWipeClearsRecordsKeepsLogs(t *testing.T) {
	s := setupTestStore(t)

	s.Insert("customers", map[string]any{"id": "cus_1"})
	if err := s.LogRequest("req_1", "GET", "/customers", 200, 3); err != nil {
		t.Fatalf("LogRequest failed: %v", err)
	}

	if err := s.Wipe(); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}
	count, _ := s.Count("customers")
	if count != 0 {
		t.Errorf("expected records wiped, got %d", count)
	}

	var logs int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM request_logs`).Scan(&logs); err != nil {
		t.Fatalf("log count failed: %v", err)
	}
	if logs != 1 {
		t.Errorf("expected request logs preserved, got %d", logs)
	}
}
