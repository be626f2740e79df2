package rag

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hoavien/restaurant-bot/internal/extract"
	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/menu"
	"github.com/hoavien/restaurant-bot/internal/models"
	"github.com/hoavien/restaurant-bot/internal/order"
)

const (
	chitchatMaxTokens = 120
	retrieveTopK      = 3
	historyLimit      = 3
)

const (
	msgBackendTrouble = "Xin lỗi, hệ thống đang gặp sự cố. Quý khách vui lòng thử lại sau."
	msgNoDishPhrase   = "Xin lỗi, tôi chưa hiểu quý khách muốn món nào. Quý khách nói rõ tên món giúp mình nhé."
	msgSeeMenu        = "Quý khách có thể hỏi \"menu có món gì\" để xem toàn bộ thực đơn."
	msgNoInfoFound    = "Xin lỗi, tôi không tìm thấy thông tin phù hợp với câu hỏi của quý khách."
	msgHistoryBroken  = "Xin lỗi, hiện không đọc được lịch sử đơn hàng. Quý khách thử lại sau nhé."
	msgNoHistory      = "Bạn chưa có đơn hàng nào trong lịch sử."
	msgConfirmNudge   = "Quý khách gõ \"xác nhận đơn hàng\" để đặt món nhé!"
	msgNextStep       = "Quý khách muốn dùng thêm gì nữa không?"
)

// "18h30", "18:30", "7 giờ", "7h" — hour first, optional minutes, optional
// hour-unit word.
var deliveryTimePattern = regexp.MustCompile(`(\d{1,2})(?:[:hH](\d{2}))?(?:\s*(?:giờ|gio|h|H))?`)

// Engine is the per-turn dialogue orchestrator: classify, optionally extract
// or retrieve, mutate the order, answer. Every collaborator failure is caught
// here and turned into a user-facing message; a fault never outlives its turn.
type Engine struct {
	log       *logger.Logger
	planner   *Planner
	retriever *Retriever
	reader    *Reader
	gen       Generator
	store     *order.Store
	ex        *extract.Extractor
	menu      *menu.Index
}

func NewEngine(
	log *logger.Logger,
	planner *Planner,
	retriever *Retriever,
	reader *Reader,
	gen Generator,
	store *order.Store,
	ex *extract.Extractor,
	menuIndex *menu.Index,
) *Engine {
	return &Engine{
		log:       log.With("service", "Engine"),
		planner:   planner,
		retriever: retriever,
		reader:    reader,
		gen:       gen,
		store:     store,
		ex:        ex,
		menu:      menuIndex,
	}
}

// Process handles one turn for one user and always returns a response string.
func (e *Engine) Process(ctx context.Context, userID, query string) string {
	intent, err := e.planner.Classify(ctx, query)
	if err != nil {
		e.log.Error("classification failed", "error", err)
		return msgBackendTrouble
	}

	// An "order" for something generic ("món gì cay cay") is really a
	// request for a recommendation. Downgrade instead of failing the add.
	if intent == models.IntentOrder && !e.isSpecificDishOrder(query) {
		e.log.Debug("order downgraded to search", "query", query)
		intent = models.IntentSearch
	}

	switch intent {
	case models.IntentOrder:
		return e.handleOrder(userID, query)
	case models.IntentViewOrder:
		return e.handleViewOrder(userID)
	case models.IntentOrderHistory:
		return e.handleHistory(userID)
	case models.IntentCancelItem:
		return e.handleCancelItem(userID, query)
	case models.IntentUpdateQuantity:
		return e.handleUpdateQuantity(userID, query)
	case models.IntentConfirmOrder:
		return e.handleConfirmOrder(userID, query)
	case models.IntentSearch:
		return e.handleSearch(ctx, query)
	default:
		return e.handleChitchat(ctx, query)
	}
}

// isSpecificDishOrder reports whether an ORDER utterance names a dish the
// menu can resolve, as opposed to a generic craving.
func (e *Engine) isSpecificDishOrder(query string) bool {
	if e.ex.HasCravingTerm(query) {
		return false
	}
	phrase, _ := e.ex.Extract(query)
	if phrase == "" {
		return false
	}
	return e.menu.Find(phrase) != nil
}

func (e *Engine) handleOrder(userID, query string) string {
	phrase, quantity := e.ex.Extract(query)
	if phrase == "" {
		return msgNoDishPhrase
	}

	item, msg, err := e.store.AddItem(userID, phrase, quantity)
	if err != nil {
		return e.orderErrorMessage(err) + " " + msgSeeMenu
	}
	return fmt.Sprintf("%s Giá: %sđ/phần. %s", msg, order.FormatVND(item.Price), msgNextStep)
}

func (e *Engine) handleViewOrder(userID string) string {
	summary := e.store.ViewOrder(userID)
	if summary.Empty() {
		return summary.Message
	}
	return summary.Message + "\n\n" + msgConfirmNudge
}

func (e *Engine) handleHistory(userID string) string {
	records, err := e.store.History(userID, historyLimit)
	if err != nil {
		e.log.Error("history read failed", "error", err)
		return msgHistoryBroken
	}
	if len(records) == 0 {
		return msgNoHistory
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 %d ĐƠN HÀNG GẦN NHẤT CỦA BẠN:\n", len(records)))
	for i, rec := range records {
		sb.WriteString(fmt.Sprintf("\n📦 Đơn hàng #%d - %s\n", i+1, rec.Timestamp))
		sb.WriteString(fmt.Sprintf("   Trạng thái: %s\n", rec.Status))
		sb.WriteString(fmt.Sprintf("   Tổng tiền: %sđ\n", order.FormatVND(rec.TotalPayment)))
		items := make([]string, 0, len(rec.Items))
		for _, item := range rec.Items {
			items = append(items, fmt.Sprintf("%dx %s", item.Quantity, item.NameVN))
		}
		sb.WriteString(fmt.Sprintf("   Chi tiết: %s\n", strings.Join(items, ", ")))
		sb.WriteString(strings.Repeat("-", 30))
	}
	return sb.String()
}

func (e *Engine) handleCancelItem(userID, query string) string {
	phrase := e.ex.StripCancelWords(query)
	if phrase == "" {
		return msgNoDishPhrase
	}
	msg, err := e.store.RemoveItem(userID, phrase)
	if err != nil {
		return e.orderErrorMessage(err)
	}
	return msg
}

func (e *Engine) handleUpdateQuantity(userID, query string) string {
	phrase, quantity := e.ex.Extract(query)
	if phrase == "" {
		return msgNoDishPhrase
	}

	// "thêm 2 phần nữa" accumulates; "đổi thành 2 phần" overwrites.
	if e.ex.HasAddVerb(query) {
		_, msg, err := e.store.AddItem(userID, phrase, quantity)
		if err != nil {
			return e.orderErrorMessage(err)
		}
		return msg
	}

	msg, err := e.store.UpdateQuantity(userID, phrase, quantity)
	if err != nil {
		return e.orderErrorMessage(err)
	}
	return msg
}

func (e *Engine) handleConfirmOrder(userID, query string) string {
	_, msg, err := e.store.ConfirmOrder(userID, parseDeliveryTime(query))
	if err != nil {
		if errors.Is(err, order.ErrEmptyOrder) {
			return "Đơn hàng của bạn đang trống. Vui lòng thêm món trước khi đặt hàng."
		}
		e.log.Error("confirm failed", "error", err)
		return "Xin lỗi, không thể lưu đơn hàng lúc này. Đơn của quý khách vẫn được giữ nguyên, vui lòng thử xác nhận lại."
	}
	return msg
}

func (e *Engine) handleSearch(ctx context.Context, query string) string {
	contexts, err := e.retriever.Retrieve(ctx, query, retrieveTopK)
	if err != nil {
		e.log.Error("retrieval failed", "error", err)
		return msgBackendTrouble
	}
	if len(contexts) == 0 {
		return msgNoInfoFound
	}

	answer, err := e.reader.Respond(ctx, query, contexts)
	if err != nil {
		e.log.Error("reader failed", "error", err)
		return msgBackendTrouble
	}
	return answer
}

func (e *Engine) handleChitchat(ctx context.Context, query string) string {
	prompt := fmt.Sprintf(
		"Bạn là nhân viên nhà hàng Hòa Viên. Khách hàng nói: %q. Hãy phản hồi một cách lịch sự, ngắn gọn.",
		query)
	answer, err := e.gen.Generate(ctx, prompt, chitchatMaxTokens)
	if err != nil {
		e.log.Error("chitchat generation failed", "error", err)
		return msgBackendTrouble
	}
	return answer
}

func (e *Engine) orderErrorMessage(err error) string {
	switch {
	case errors.Is(err, order.ErrDishNotFound):
		return "Xin lỗi, không tìm thấy món này trong menu."
	case errors.Is(err, order.ErrEmptyOrder):
		return "Đơn hàng của bạn đang trống."
	case errors.Is(err, order.ErrItemNotInOrder):
		return "Món này không có trong đơn hàng của bạn."
	default:
		e.log.Error("order operation failed", "error", err)
		return msgBackendTrouble
	}
}

// parseDeliveryTime finds an HH[:MM] mention in the utterance and returns it
// as "HH:MM", or "" when there is none.
func parseDeliveryTime(query string) string {
	m := deliveryTimePattern.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour > 23 {
		return ""
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return ""
		}
	}
	return fmt.Sprintf("%d:%02d", hour, minute)
}
