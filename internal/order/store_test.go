package order

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/menu"
)

const testMenu = `{
  "menu": {
    "categories": [
      {
        "name_vn": "Món nước",
        "items": [
          {"id": "M01", "name_vn": "Phở bò", "name_en": "Beef noodle soup", "price": 45000},
          {"id": "M02", "name_vn": "Bún chả", "name_en": "Grilled pork noodle", "price": 50000}
        ]
      }
    ]
  }
}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	menuPath := filepath.Join(dir, "menu.json")
	if err := os.WriteFile(menuPath, []byte(testMenu), 0o644); err != nil {
		t.Fatalf("write menu: %v", err)
	}
	log := logger.NewNop()
	ix := menu.Load(menuPath, log)
	return NewStore(ix, NewLog(filepath.Join(dir, "orders_log.jsonl"), log), log)
}

func TestAddItemAccumulates(t *testing.T) {
	s := newTestStore(t)

	item, _, err := s.AddItem("u1", "phở bò", 2)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if item.ID != "M01" {
		t.Fatalf("resolved item: want=M01 got=%s", item.ID)
	}
	if _, _, err := s.AddItem("u1", "beef noodle soup", 3); err != nil {
		t.Fatalf("second add: %v", err)
	}

	summary := s.ViewOrder("u1")
	if len(summary.Lines) != 1 {
		t.Fatalf("lines: want=1 got=%d", len(summary.Lines))
	}
	if summary.Lines[0].Quantity != 5 {
		t.Fatalf("quantity: want=5 got=%d", summary.Lines[0].Quantity)
	}
}

func TestAddItemUnknownDish(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddItem("u1", "pizza", 1); !errors.Is(err, ErrDishNotFound) {
		t.Fatalf("want ErrDishNotFound, got %v", err)
	}
}

func TestRemoveItemPreconditions(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.RemoveItem("u1", "phở bò"); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("empty order: want ErrEmptyOrder, got %v", err)
	}

	if _, _, err := s.AddItem("u1", "phở bò", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.RemoveItem("u1", "pizza"); !errors.Is(err, ErrDishNotFound) {
		t.Fatalf("unknown dish: want ErrDishNotFound, got %v", err)
	}
	if _, err := s.RemoveItem("u1", "bún chả"); !errors.Is(err, ErrItemNotInOrder) {
		t.Fatalf("not in order: want ErrItemNotInOrder, got %v", err)
	}

	if _, err := s.RemoveItem("u1", "phở bò"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !s.ViewOrder("u1").Empty() {
		t.Fatalf("order should be empty after removal")
	}
}

func TestUpdateQuantityReplacesAndZeroRemoves(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddItem("u1", "phở bò", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := s.UpdateQuantity("u1", "phở bò", 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.ViewOrder("u1").Lines[0].Quantity; got != 7 {
		t.Fatalf("quantity after update: want=7 got=%d", got)
	}

	if _, err := s.UpdateQuantity("u1", "phở bò", 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if !s.ViewOrder("u1").Empty() {
		t.Fatalf("quantity zero should remove the line")
	}
}

func TestViewOrderVATTruncates(t *testing.T) {
	s := newTestStore(t)
	// 2 × 50,000 = 100,000 subtotal.
	if _, _, err := s.AddItem("u1", "bún chả", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	summary := s.ViewOrder("u1")
	if summary.Subtotal != 100000 {
		t.Fatalf("subtotal: want=100000 got=%d", summary.Subtotal)
	}
	if summary.Total != 108000 {
		t.Fatalf("total: want=108000 got=%d", summary.Total)
	}
	if !strings.Contains(summary.Message, "108,000") {
		t.Fatalf("message should carry formatted total: %q", summary.Message)
	}

	// 45,000 × 1.08 = 48,600; add one phở: subtotal 145,000 → floor(156,600).
	if _, _, err := s.AddItem("u1", "phở bò", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := s.ViewOrder("u1").Total; got != 156600 {
		t.Fatalf("total: want=156600 got=%d", got)
	}
}

func TestConfirmOrderEmptyFailsWithoutLogRecord(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.ConfirmOrder("u1", ""); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("want ErrEmptyOrder, got %v", err)
	}
	records, err := s.History("u1", 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("no record should be written on failed confirm, got %d", len(records))
	}
}

func TestConfirmOrderSnapshotsAndClears(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.AddItem("u1", "phở bò", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	rec, msg, err := s.ConfirmOrder("u1", "18:30")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if rec.Status != "confirmed" {
		t.Fatalf("status: want=confirmed got=%s", rec.Status)
	}
	if len(rec.Items) != 1 || rec.Items[0].ItemID != "M01" || rec.Items[0].Quantity != 2 {
		t.Fatalf("snapshot mismatch: %+v", rec.Items)
	}
	if rec.TotalPayment != 45000*2*108/100 {
		t.Fatalf("total payment: want=%d got=%d", 45000*2*108/100, rec.TotalPayment)
	}
	if !strings.Contains(msg, "18:30") {
		t.Fatalf("confirm message should carry delivery time: %q", msg)
	}
	if !s.ViewOrder("u1").Empty() {
		t.Fatalf("active order should be cleared after confirm")
	}

	records, err := s.History("u1", 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("log records: want=1 got=%d", len(records))
	}
	if records[0].OrderID != rec.OrderID {
		t.Fatalf("order id: want=%s got=%s", rec.OrderID, records[0].OrderID)
	}
}

func TestConfirmOrderUniqueIDsWithinOneSecond(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		if _, _, err := s.AddItem("u1", "phở bò", 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		rec, _, err := s.ConfirmOrder("u1", "")
		if err != nil {
			t.Fatalf("confirm %d: %v", i, err)
		}
		if ids[rec.OrderID] {
			t.Fatalf("duplicate order id %s", rec.OrderID)
		}
		ids[rec.OrderID] = true
	}
}

func TestConfirmOrderLogFailureKeepsOrder(t *testing.T) {
	s := newTestStore(t)
	// Point the log at a directory so the append cannot open it.
	s.orderLog = NewLog(t.TempDir(), logger.NewNop())

	if _, _, err := s.AddItem("u1", "phở bò", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := s.ConfirmOrder("u1", ""); !errors.Is(err, ErrLogWrite) {
		t.Fatalf("want ErrLogWrite, got %v", err)
	}
	if s.ViewOrder("u1").Empty() {
		t.Fatalf("active order must survive a failed log write")
	}
}

func TestFormatVND(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		5000:     "5,000",
		45000:    "45,000",
		108000:   "108,000",
		1234567:  "1,234,567",
		-45000:   "-45,000",
		999:      "999",
		1000:     "1,000",
	}
	for in, want := range cases {
		if got := FormatVND(in); got != want {
			t.Fatalf("FormatVND(%d): want=%q got=%q", in, want, got)
		}
	}
}
