package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-pix-packs/internal/application"
	"telegram-pix-packs/internal/config"
	"telegram-pix-packs/internal/domain/ports/adapter"
	"telegram-pix-packs/internal/infra/logging"
	red "telegram-pix-packs/internal/infra/redis"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter polls updates with tgbotapi and delegates to the
// BotFacade. Updates are fanned out to a small worker pool so one slow
// gateway round trip does not stall other users.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		log:           logger,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Warn().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

// sendCode sends text as inline code so Telegram offers copy-on-tap.
func (r *RealTelegramBotAdapter) sendCode(chatID int64, code string) error {
	msg := tgbotapi.NewMessage(chatID, "`"+code+"`")
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			btns = append(btns, kb)
		}
		kbRows = append(kbRows, btns)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	if update.Message == nil {
		return nil
	}
	tgUser := update.Message.From
	if tgUser == nil {
		return nil
	}
	ctx = logging.WithUserID(ctx, tgUser.ID)
	chatID := update.Message.Chat.ID

	fields := strings.Fields(update.Message.Text)
	command := "message"
	if len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		command = fields[0]
	}
	if !r.allow(ctx, tgUser.ID, command, 20) {
		return r.SendMessage(ctx, chatID, "Calma! Muitas mensagens, tente de novo em instantes.")
	}

	switch command {
	case "/start":
		text, rows := r.facade.HandleStart(ctx, tgUser.FirstName)
		return r.SendButtons(ctx, chatID, text, rows)

	case "/packs":
		return r.SendMessage(ctx, chatID, r.facade.HandleMyPacks(ctx, tgUser.ID))

	case "/pending":
		if _, ok := r.adminIDsMap[tgUser.ID]; !ok {
			return nil
		}
		return r.SendMessage(ctx, chatID, r.facade.HandlePending(ctx))

	case "/help":
		return r.SendMessage(ctx, chatID, "Comandos:\n/start - escolher um pack\n/packs - seus packs ativos\n/help - esta mensagem")

	default:
		return nil
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}

	ctx = logging.WithUserID(ctx, query.From.ID)
	data := strings.TrimSpace(query.Data)
	if !r.allow(ctx, query.From.ID, "cb:"+data, 30) {
		return r.SendMessage(ctx, chatID, "Calma! Muitos cliques, tente de novo em instantes.")
	}

	switch {
	case strings.HasPrefix(data, "pack:"):
		packType := strings.TrimPrefix(data, "pack:")
		reply, err := r.facade.HandlePackSelection(ctx, query.From.ID, query.From.UserName, chatID, packType)
		if err != nil {
			return r.SendMessage(ctx, chatID, "⚠️ Algo deu errado, tente novamente!")
		}
		if err := r.SendMessage(ctx, chatID, reply.Notice); err != nil {
			return err
		}
		if err := r.sendCode(chatID, reply.PixCode); err != nil {
			return err
		}
		rows := [][]adapter.InlineButton{{{Text: "✅ Verificar Pagamento", Data: reply.VerifyData}}}
		return r.SendButtons(ctx, chatID, reply.Prompt, rows)

	case strings.HasPrefix(data, "verify:"):
		paymentID, err := strconv.ParseInt(strings.TrimPrefix(data, "verify:"), 10, 64)
		if err != nil {
			return r.SendMessage(ctx, chatID, "⚠️ Pagamento inválido.")
		}
		ctx = logging.WithPaymentID(ctx, paymentID)
		return r.SendMessage(ctx, chatID, r.facade.HandleVerification(ctx, paymentID, query.From.ID, chatID))

	default:
		return errors.New("unknown callback data")
	}
}

func (r *RealTelegramBotAdapter) allow(ctx context.Context, userID int64, action string, limit int) bool {
	if r.rateLimiter == nil {
		return true
	}
	allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(userID, action), limit, time.Minute)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	return allowed
}
