package notificator

import (
	"context"

	"fmt"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot

	db models.UserStore
}

func NewTelegramNotificator(logger *logger.Logger, token string, db models.UserStore) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{
		logger: logger,
		db:     db,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %s", err)
	}
	go b.Start(context.Background())
	provider.bot = b

	return provider, nil
}

func (t *TelegramNotificator) SendNotification(chatID, message string) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	_, err := t.bot.SendMessage(context.Background(), params)
	if err != nil {
		t.logger.Error("Failed to send notification: ", err)
	}
}

// handler links a recipient's Telegram chat to their profile when they
// message /start to the bot from the account they registered.
func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	user := update.Message.From
	t.logger.Debug("Telegram update: ", user.Username, " ", update.Message.Text)

	if update.Message.Text != "/start" {
		return
	}

	profile, err := t.db.GetProfileByTelegramUsername(user.Username)
	if err != nil {
		t.logger.Error("Failed to get profile by telegram username: ", err, " username: ", user.Username)
		return
	}

	chatID := fmt.Sprint(update.Message.Chat.ID)
	if err := t.db.SetTelegramChatID(user.Username, chatID); err != nil {
		t.logger.Error("Failed to set telegram chat ID: ", err)
		return
	}

	t.logger.Info("Telegram chat linked", "username", profile.Username)
	t.SendNotification(chatID, "You will now receive donation notifications for @"+profile.Username)
}
