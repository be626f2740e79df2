package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/hoavien/restaurant-bot/internal/extract"
	"github.com/hoavien/restaurant-bot/internal/logger"
)

// Reader output is full prose, so it gets a larger budget than the planner.
const readerMaxTokens = 512

// Reader turns retrieved context into the final answer. Queries that ask for
// suggestions get the recommendation template, everything else the factual
// one; one generation call either way.
type Reader struct {
	log *logger.Logger
	gen Generator
	ex  *extract.Extractor
}

func NewReader(log *logger.Logger, gen Generator, ex *extract.Extractor) *Reader {
	return &Reader{log: log.With("service", "Reader"), gen: gen, ex: ex}
}

func (rd *Reader) Respond(ctx context.Context, query string, contexts []string) (string, error) {
	bullets := make([]string, 0, len(contexts))
	for _, c := range contexts {
		bullets = append(bullets, "- "+c)
	}
	contextBlock := strings.Join(bullets, "\n")

	var prompt string
	if rd.ex.WantsRecommendation(query) {
		prompt = recommendPrompt(query, contextBlock)
	} else {
		prompt = informationPrompt(query, contextBlock)
	}
	answer, err := rd.gen.Generate(ctx, prompt, readerMaxTokens)
	if err != nil {
		return "", fmt.Errorf("reader generation: %w", err)
	}
	return answer, nil
}

func informationPrompt(query, contextBlock string) string {
	return fmt.Sprintf(`Dưới đây là thông tin từ cơ sở dữ liệu của nhà hàng Hòa Viên:
%s

Hãy đóng vai một nhân viên phục vụ thân thiện, chuyên nghiệp của nhà hàng Hòa Viên.
Dựa vào thông tin trên, hãy trả lời ngắn gọn và chính xác câu hỏi của khách hàng.
Khách hàng: %s
Trả lời:`, contextBlock, query)
}

func recommendPrompt(query, contextBlock string) string {
	return fmt.Sprintf(`Dưới đây là thông tin từ cơ sở dữ liệu của nhà hàng Hòa Viên:
%s

Hãy đóng vai một nhân viên phục vụ thân thiện, chuyên nghiệp của nhà hàng Hòa Viên.
Dựa vào thông tin trên, hãy gợi ý 2-3 món phù hợp với mong muốn của khách, nêu giá
nếu có, và kết thúc bằng một lời mời khách chọn món.
Khách hàng: %s
Trả lời:`, contextBlock, query)
}
