package session

import (
	"sync"
	"testing"

	"github.com/bellhop/bellhop/internal/models"
)

func TestTransferToAgent_Idempotent(t *testing.T) {
	store := openTestStore(t)

	first, err := store.TransferToAgent("+15550001111", "A", "agent@example.com", "angry customer")
	if err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	second, err := store.TransferToAgent("+15550001111", "A", "other@example.com", "")
	if err != nil {
		t.Fatalf("second transfer: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second transfer created a new record: %d != %d", first.ID, second.ID)
	}
	if second.Agent != "agent@example.com" {
		t.Errorf("existing record must be returned unchanged, got agent %q", second.Agent)
	}
}

func TestTransferToAgent_ConcurrentRequests(t *testing.T) {
	store := openFileStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.TransferToAgent("+15550001111", "A", "agent@example.com", "")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent transfer: %v", err)
		}
	}

	var count int64
	store.db.Model(&models.AgentTransfer{}).
		Where("phone_number = ? AND status = ?", "+15550001111", models.TransferActive).
		Count(&count)
	if count != 1 {
		t.Fatalf("active transfer count = %d, want exactly 1", count)
	}
}

func TestTransferToAgent_EmptyPhone(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.TransferToAgent("", "A", "", ""); err == nil {
		t.Fatal("expected error for empty phone number")
	}
}

func TestIsTransferred_Lifecycle(t *testing.T) {
	store := openTestStore(t)

	transferred, err := store.IsTransferred("+15550001111", "A")
	if err != nil {
		t.Fatalf("is transferred: %v", err)
	}
	if transferred {
		t.Error("no transfer exists yet")
	}

	if _, err := store.TransferToAgent("+15550001111", "A", "", ""); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	transferred, _ = store.IsTransferred("+15550001111", "A")
	if !transferred {
		t.Error("expected active transfer")
	}

	resumed, err := store.ResumeChatbot("+15550001111", "A", "ops@example.com")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !resumed {
		t.Error("expected resume to report success")
	}

	transferred, _ = store.IsTransferred("+15550001111", "A")
	if transferred {
		t.Error("transfer must be inactive after resume")
	}
}

func TestResumeChatbot_RecordsActor(t *testing.T) {
	store := openTestStore(t)
	store.TransferToAgent("+15550001111", "A", "", "")

	if _, err := store.ResumeChatbot("+15550001111", "A", "ops@example.com"); err != nil {
		t.Fatalf("resume: %v", err)
	}

	var transfer models.AgentTransfer
	if err := store.db.First(&transfer, "phone_number = ?", "+15550001111").Error; err != nil {
		t.Fatalf("load transfer: %v", err)
	}
	if transfer.Status != models.TransferResumed {
		t.Errorf("Status = %q, want Resumed", transfer.Status)
	}
	if transfer.ResumedAt == nil {
		t.Error("ResumedAt not recorded")
	}
	if transfer.ResumedBy != "ops@example.com" {
		t.Errorf("ResumedBy = %q, want ops@example.com", transfer.ResumedBy)
	}
}

func TestResumeChatbot_NoActiveTransfer(t *testing.T) {
	store := openTestStore(t)

	resumed, err := store.ResumeChatbot("+15550001111", "A", "")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed {
		t.Error("resume must report false when no active transfer exists")
	}
}

func TestTransferAfterResume_CreatesNewRecord(t *testing.T) {
	store := openTestStore(t)

	first, _ := store.TransferToAgent("+15550001111", "A", "", "")
	store.ResumeChatbot("+15550001111", "A", "")
	second, err := store.TransferToAgent("+15550001111", "A", "", "")
	if err != nil {
		t.Fatalf("second transfer: %v", err)
	}
	if first.ID == second.ID {
		t.Error("a resumed transfer must not be reused")
	}
}

func TestActiveTransfer_Details(t *testing.T) {
	store := openTestStore(t)

	got, err := store.ActiveTransfer("+15550001111", "A")
	if err != nil {
		t.Fatalf("active transfer: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for untransferred sender, got %+v", got)
	}

	store.TransferToAgent("+15550001111", "A", "agent@example.com", "")
	got, err = store.ActiveTransfer("+15550001111", "A")
	if err != nil {
		t.Fatalf("active transfer: %v", err)
	}
	if got == nil || got.Agent != "agent@example.com" {
		t.Errorf("ActiveTransfer = %+v, want record with agent", got)
	}
}

func TestActiveTransfers_Filters(t *testing.T) {
	store := openTestStore(t)

	store.TransferToAgent("+15550001111", "A", "alice@example.com", "")
	store.TransferToAgent("+15550002222", "A", "bob@example.com", "")
	store.TransferToAgent("+15550003333", "B", "alice@example.com", "")
	store.ResumeChatbot("+15550002222", "A", "")

	all, err := store.ActiveTransfers("", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(all active) = %d, want 2", len(all))
	}

	onA, _ := store.ActiveTransfers("A", "")
	if len(onA) != 1 || onA[0].PhoneNumber != "+15550001111" {
		t.Errorf("account filter returned %+v", onA)
	}

	byAlice, _ := store.ActiveTransfers("", "alice@example.com")
	if len(byAlice) != 2 {
		t.Errorf("agent filter returned %d records, want 2", len(byAlice))
	}
}
