package models

// Intent is the classified purpose of a user utterance.
type Intent string

const (
	IntentOrder          Intent = "ORDER"
	IntentViewOrder      Intent = "VIEW_ORDER"
	IntentOrderHistory   Intent = "ORDER_HISTORY"
	IntentCancelItem     Intent = "CANCEL_ITEM"
	IntentUpdateQuantity Intent = "UPDATE_QUANTITY"
	IntentConfirmOrder   Intent = "CONFIRM_ORDER"
	IntentSearch         Intent = "SEARCH"
	IntentNoSearch       Intent = "NO_SEARCH"
)

// MenuItem is one dish on the menu. Created once at menu load, never mutated.
// Prices are in đồng, which has no fractional unit.
type MenuItem struct {
	ID       string `json:"id"`
	NameVN   string `json:"name_vn"`
	NameEN   string `json:"name_en"`
	Price    int    `json:"price"`
	Category string `json:"category"`
}

// OrderLine is one dish in a user's active order.
type OrderLine struct {
	ItemID   string `json:"id"`
	NameVN   string `json:"name_vn"`
	NameEN   string `json:"name_en"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
}

// OrderSummary is the result of viewing an active order. Total includes 8% VAT,
// truncated toward zero.
type OrderSummary struct {
	Lines    []OrderLine
	Subtotal int
	Total    int
	Message  string
}

func (s OrderSummary) Empty() bool { return len(s.Lines) == 0 }

// ConfirmedOrder is one line of the append-only order log. Immutable once
// written; Items is a snapshot with no shared ownership with the active order.
type ConfirmedOrder struct {
	OrderID      string      `json:"order_id"`
	UserID       string      `json:"user_id"`
	Timestamp    string      `json:"timestamp"`
	Items        []OrderLine `json:"items"`
	TotalPayment int         `json:"total_payment"`
	Status       string      `json:"status"`
}

const StatusConfirmed = "confirmed"
