package order

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/menu"
	"github.com/hoavien/restaurant-bot/internal/models"
)

// vatPercent is applied on top of the subtotal, truncating toward zero.
const vatPercent = 8

// Store holds every user's in-progress order in memory and writes confirmed
// orders to the append-only log. Orders do not survive a restart; the log does.
type Store struct {
	mu          sync.Mutex
	menu        *menu.Index
	orderLog    *Log
	orders      map[string][]*models.OrderLine
	lastConfirm map[string]int64
	log         *logger.Logger
	now         func() time.Time
}

func NewStore(menuIndex *menu.Index, orderLog *Log, log *logger.Logger) *Store {
	return &Store{
		menu:        menuIndex,
		orderLog:    orderLog,
		orders:      make(map[string][]*models.OrderLine),
		lastConfirm: make(map[string]int64),
		log:         log.With("service", "OrderStore"),
		now:         time.Now,
	}
}

// AddItem resolves the dish phrase and adds quantity portions to the user's
// order. Adding a dish that is already in the order accumulates its quantity.
func (s *Store) AddItem(userID, dishPhrase string, quantity int) (*models.MenuItem, string, error) {
	item := s.menu.Find(dishPhrase)
	if item == nil {
		return nil, "", fmt.Errorf("%w: %q", ErrDishNotFound, dishPhrase)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.orders[userID] {
		if line.ItemID == item.ID {
			line.Quantity += quantity
			msg := fmt.Sprintf("Đã tăng số lượng %s lên %d phần.", item.NameVN, line.Quantity)
			return item, msg, nil
		}
	}

	s.orders[userID] = append(s.orders[userID], &models.OrderLine{
		ItemID:   item.ID,
		NameVN:   item.NameVN,
		NameEN:   item.NameEN,
		Price:    item.Price,
		Quantity: quantity,
		Category: item.Category,
	})
	msg := fmt.Sprintf("Đã thêm %d phần %s vào đơn hàng.", quantity, item.NameVN)
	return item, msg, nil
}

// RemoveItem takes a dish out of the user's order entirely.
func (s *Store) RemoveItem(userID, dishPhrase string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(userID, dishPhrase)
}

func (s *Store) removeLocked(userID, dishPhrase string) (string, error) {
	lines := s.orders[userID]
	if len(lines) == 0 {
		return "", ErrEmptyOrder
	}

	item := s.menu.Find(dishPhrase)
	if item == nil {
		return "", fmt.Errorf("%w: %q", ErrDishNotFound, dishPhrase)
	}

	for i, line := range lines {
		if line.ItemID == item.ID {
			s.orders[userID] = append(lines[:i], lines[i+1:]...)
			return fmt.Sprintf("Đã xóa %s khỏi đơn hàng.", line.NameVN), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrItemNotInOrder, item.NameVN)
}

// UpdateQuantity overwrites the quantity of a dish already in the order.
// A quantity of zero or less is a removal, not an error.
func (s *Store) UpdateQuantity(userID, dishPhrase string, quantity int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		return s.removeLocked(userID, dishPhrase)
	}

	lines := s.orders[userID]
	if len(lines) == 0 {
		return "", ErrEmptyOrder
	}

	item := s.menu.Find(dishPhrase)
	if item == nil {
		return "", fmt.Errorf("%w: %q", ErrDishNotFound, dishPhrase)
	}

	for _, line := range lines {
		if line.ItemID == item.ID {
			line.Quantity = quantity
			return fmt.Sprintf("Đã cập nhật số lượng %s thành %d phần.", line.NameVN, quantity), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrItemNotInOrder, item.NameVN)
}

// ViewOrder summarizes the active order with subtotal and VAT-inclusive total.
func (s *Store) ViewOrder(userID string) models.OrderSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(userID)
}

func (s *Store) viewLocked(userID string) models.OrderSummary {
	lines := s.orders[userID]
	if len(lines) == 0 {
		return models.OrderSummary{Message: "Đơn hàng của bạn đang trống."}
	}

	summary := models.OrderSummary{Lines: make([]models.OrderLine, 0, len(lines))}
	var sb strings.Builder
	sb.WriteString("Đơn hàng của bạn:\n")
	for _, line := range lines {
		summary.Lines = append(summary.Lines, *line)
		lineTotal := line.Price * line.Quantity
		summary.Subtotal += lineTotal
		sb.WriteString(fmt.Sprintf("- %s (%s): %d phần × %sđ = %sđ\n",
			line.NameVN, line.NameEN, line.Quantity, FormatVND(line.Price), FormatVND(lineTotal)))
	}
	summary.Total = summary.Subtotal * (100 + vatPercent) / 100

	sb.WriteString(fmt.Sprintf("\nTổng cộng: %sđ (chưa bao gồm VAT %d%%)\n", FormatVND(summary.Subtotal), vatPercent))
	sb.WriteString(fmt.Sprintf("Thành tiền: %sđ", FormatVND(summary.Total)))
	summary.Message = sb.String()
	return summary
}

// ClearOrder empties the user's active order. Idempotent.
func (s *Store) ClearOrder(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[userID] = nil
}

// ConfirmOrder snapshots the active order into the log and then clears it.
// The log write happens first: if it fails the order stays intact and the
// error is surfaced.
func (s *Store) ConfirmOrder(userID, deliveryTime string) (*models.ConfirmedOrder, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := s.viewLocked(userID)
	if summary.Empty() {
		return nil, "", ErrEmptyOrder
	}

	ts := s.now().Unix()
	if last := s.lastConfirm[userID]; ts <= last {
		ts = last + 1
	}
	s.lastConfirm[userID] = ts
	confirmedAt := time.Unix(ts, 0)

	rec := models.ConfirmedOrder{
		OrderID:      fmt.Sprintf("%s_%d", userID, ts),
		UserID:       userID,
		Timestamp:    confirmedAt.Format("2006-01-02 15:04:05"),
		Items:        summary.Lines,
		TotalPayment: summary.Total,
		Status:       models.StatusConfirmed,
	}

	if err := s.orderLog.Append(rec); err != nil {
		s.log.Error("confirm failed, active order kept", "user_id", userID, "error", err)
		return nil, "", err
	}
	s.orders[userID] = nil

	var sb strings.Builder
	sb.WriteString("✅ Đã xác nhận đơn hàng!\n\n")
	sb.WriteString(summary.Message)
	if deliveryTime != "" {
		sb.WriteString(fmt.Sprintf("\n\n🕐 Thời gian giao: %s", deliveryTime))
	} else {
		sb.WriteString("\n\n🕐 Thời gian giao: Càng sớm càng tốt")
	}
	sb.WriteString("\n\nCảm ơn quý khách đã đặt hàng tại Hòa Viên! 🎉")
	return &rec, sb.String(), nil
}

// History returns the user's most recent confirmed orders, newest first.
func (s *Store) History(userID string, limit int) ([]models.ConfirmedOrder, error) {
	if limit <= 0 {
		limit = 3
	}
	return s.orderLog.ReadUser(userID, limit)
}

// FormatVND renders an amount of đồng with comma digit grouping.
func FormatVND(amount int) string {
	digits := strconv.Itoa(amount)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
		if len(digits) > lead {
			sb.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		sb.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			sb.WriteByte(',')
		}
	}
	return sb.String()
}
