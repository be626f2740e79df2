package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoavien/restaurant-bot/internal/logger"
	"github.com/hoavien/restaurant-bot/internal/models"
)

// Generator is the generation backend: one blocking call, raw text back.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// The planner only needs the bracketed label, so its token budget is small.
const plannerMaxTokens = 30

// intentPriority is the fixed scan order for bracketed tags in the raw model
// output. When a noisy response carries several tags, the earlier one wins.
var intentPriority = []models.Intent{
	models.IntentOrder,
	models.IntentViewOrder,
	models.IntentCancelItem,
	models.IntentOrderHistory,
	models.IntentUpdateQuantity,
	models.IntentConfirmOrder,
	models.IntentSearch,
}

// Planner decides what a turn is asking for.
type Planner struct {
	log *logger.Logger
	gen Generator
}

func NewPlanner(log *logger.Logger, gen Generator) *Planner {
	return &Planner{log: log.With("service", "Planner"), gen: gen}
}

// Classify issues exactly one generation call and parses the intent out of
// the raw response.
func (p *Planner) Classify(ctx context.Context, utterance string) (models.Intent, error) {
	raw, err := p.gen.Generate(ctx, classifyPrompt(utterance), plannerMaxTokens)
	if err != nil {
		return "", fmt.Errorf("planner generation: %w", err)
	}

	intent := ParseIntent(raw)
	p.log.Debug("utterance classified", "intent", intent, "raw", raw)
	return intent, nil
}

// ParseIntent scans the raw model output for bracketed tags in priority order.
// No tag at all means NO_SEARCH.
func ParseIntent(raw string) models.Intent {
	for _, intent := range intentPriority {
		if strings.Contains(raw, "["+string(intent)+"]") {
			return intent
		}
	}
	return models.IntentNoSearch
}

func classifyPrompt(utterance string) string {
	return fmt.Sprintf(`Câu nói của khách hàng: %q

Nhiệm vụ: Bạn là bộ phận phân loại ý định cho chatbot của nhà hàng Hòa Viên.
Hãy xếp câu nói vào đúng MỘT trong 8 nhóm sau:

1. [ORDER] - Khách gọi/đặt một món cụ thể. Ví dụ: "Cho tôi 2 phần phở bò".
2. [VIEW_ORDER] - Khách muốn xem đơn hàng HIỆN TẠI. Ví dụ: "Đơn của tôi có gì?".
3. [ORDER_HISTORY] - Khách hỏi về các đơn ĐÃ đặt trước đây. Ví dụ: "Hôm qua tôi đặt món gì?".
   QUY TẮC: nếu câu có từ chỉ quá khứ (đã, trước đây, lịch sử, hôm qua, lần trước)
   thì chọn [ORDER_HISTORY] thay vì [VIEW_ORDER].
4. [CANCEL_ITEM] - Khách muốn bỏ một món khỏi đơn. Ví dụ: "Hủy món phở bò đi".
5. [UPDATE_QUANTITY] - Khách muốn đổi số lượng món đã gọi. Ví dụ: "Đổi phở bò thành 3 phần".
6. [CONFIRM_ORDER] - Khách chốt đơn, đồng ý đặt hàng. Ví dụ: "Xác nhận đơn hàng giúp mình".
7. [SEARCH] - Khách hỏi thông tin: món ăn, menu, giá cả, gợi ý món theo khẩu vị
   (cay, chua, ngọt...), giờ mở cửa, địa chỉ, hotline, wifi. Ví dụ: "Có món gì cay không?".
8. [NO_SEARCH] - Chào hỏi xã giao, cảm ơn, tạm biệt, hoặc câu không liên quan nhà hàng.

Output chỉ chứa đúng một nhãn, ví dụ: [ORDER].`, utterance)
}
