package bot

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hoavien/restaurant-bot/internal/logger"
)

// Responder handles one free-text turn and always has an answer.
type Responder interface {
	Process(ctx context.Context, userID, query string) string
}

type Bot struct {
	api    *tgbotapi.BotAPI
	engine Responder
	log    *logger.Logger
}

type Config struct {
	Token string
}

func New(cfg Config, engine Responder, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Info("authorized", "account", api.Self.UserName)

	return &Bot{
		api:    api,
		engine: engine,
		log:    log.With("service", "Bot"),
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}

			if update.Message.IsCommand() {
				b.handleCommand(update.Message)
			} else {
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, "Xin chào! Tôi là trợ lý đặt món của nhà hàng Hòa Viên. 🍜\n\n"+
			"Quý khách có thể nhắn trực tiếp, ví dụ:\n"+
			"• \"cho tôi 2 phần phở bò\" - đặt món\n"+
			"• \"xem đơn hàng\" - kiểm tra đơn hiện tại\n"+
			"• \"xác nhận đơn hàng\" - chốt đơn\n"+
			"• \"menu có món gì cay?\" - hỏi về thực đơn\n\n"+
			"/help - xem lại hướng dẫn")

	case "help":
		b.sendMessage(msg.Chat.ID, "Cách dùng:\n"+
			"• Đặt món: \"cho tôi 2 phần phở bò\"\n"+
			"• Xem đơn: \"xem đơn hàng của tôi\"\n"+
			"• Sửa số lượng: \"đổi phở bò thành 3 phần\"\n"+
			"• Hủy món: \"hủy món phở bò\"\n"+
			"• Chốt đơn: \"xác nhận đơn hàng, giao lúc 18h30\"\n"+
			"• Lịch sử: \"tôi đã đặt gì trước đây?\"\n"+
			"• Hỏi thông tin: \"nhà hàng mở cửa mấy giờ?\"")

	default:
		b.sendMessage(msg.Chat.ID, "Lệnh không hợp lệ. Gõ /help để xem hướng dẫn.")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)
	reply := b.engine.Process(ctx, userID, msg.Text)
	b.sendMessage(msg.Chat.ID, reply)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("error sending message", "chat_id", chatID, "error", err)
	}
}
