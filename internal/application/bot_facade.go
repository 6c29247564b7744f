package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"telegram-pix-packs/internal/domain"
	"telegram-pix-packs/internal/domain/model"
	"telegram-pix-packs/internal/domain/ports/adapter"
	"telegram-pix-packs/internal/usecase"
)

// BotFacade composes usecases into high-level bot replies. Facade methods
// return display strings (and keyboards) so the Telegram adapter just
// forwards them to the chat; every gateway or storage failure is mapped to a
// user-facing message here and never propagates as a crash.
type BotFacade struct {
	PayUC   usecase.PaymentUseCase
	StatsUC usecase.StatsUseCase
	Catalog model.PackCatalog
}

func NewBotFacade(payUC usecase.PaymentUseCase, statsUC usecase.StatsUseCase, catalog model.PackCatalog) *BotFacade {
	return &BotFacade{PayUC: payUC, StatsUC: statsUC, Catalog: catalog}
}

// PurchaseReply is everything the adapter sends after a pack selection: the
// processing notice, the raw PIX code to copy, and a verify button payload.
type PurchaseReply struct {
	Notice     string
	PixCode    string
	Prompt     string
	VerifyData string
}

// HandleStart returns the welcome text and the pack keyboard.
func (b *BotFacade) HandleStart(ctx context.Context, firstName string) (string, [][]adapter.InlineButton) {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "🔥 Olá, %s! 🔥\n\n", firstName)
	sb.WriteString("Aproveite a oferta exclusiva por tempo limitado! 🚀\n")
	sb.WriteString("Escolha seu pack agora e ganhe brindes exclusivos:\n")
	for _, p := range b.Catalog {
		fmt.Fprintf(&sb, "\n%s - %s", p.Label, model.FormatBRL(p.PriceCents))
	}

	row := make([]adapter.InlineButton, 0, len(b.Catalog))
	for _, p := range b.Catalog {
		row = append(row, adapter.InlineButton{Text: p.Label, Data: "pack:" + p.Type})
	}
	return sb.String(), [][]adapter.InlineButton{row}
}

// HandlePackSelection runs the purchase flow for one pack tap.
func (b *BotFacade) HandlePackSelection(ctx context.Context, userID int64, username string, chatID int64, packType string) (*PurchaseReply, error) {
	pack, ok := b.Catalog.Find(packType)
	if !ok {
		return nil, domain.ErrInvalidArgument
	}
	res, err := b.PayUC.InitiatePurchase(ctx, userID, username, chatID, pack.Type, pack.PriceCents)
	if err != nil {
		return nil, err
	}
	return &PurchaseReply{
		Notice:     "🚀 Seu pagamento está sendo processado! 🚀\n\n✨ Quanto antes você pagar, mais rápido aproveita! ✨",
		PixCode:    res.PixCode,
		Prompt:     "👆 Copie o código PIX acima para realizar o pagamento.",
		VerifyData: fmt.Sprintf("verify:%d", res.PaymentID),
	}, nil
}

// HandleVerification maps the five resolved states (plus the degraded and
// error paths) onto the user-facing message.
func (b *BotFacade) HandleVerification(ctx context.Context, paymentID, userID, chatID int64) string {
	res, err := b.PayUC.VerifyPayment(ctx, paymentID, userID, chatID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "⚠️ Pagamento não encontrado. Comece de novo com /start."
	case errors.Is(err, domain.ErrNotAuthorized):
		return "🚫 Esse pagamento não é seu."
	case err != nil:
		return "⚠️ Algo deu errado, tente novamente!"
	}

	if !res.Refreshed {
		return "⚠️ Não foi possível consultar o pagamento agora, tente novamente em instantes."
	}
	switch res.Status {
	case model.PaymentStatusApproved:
		return "🎉 Pagamento aprovado! Aproveite:"
	case model.PaymentStatusPending:
		return "⏳ Ainda estamos aguardando seu pagamento, tente novamente em alguns minutos."
	case model.PaymentStatusRejected:
		return "❌ Pagamento não aprovado. Status: rejected"
	case model.PaymentStatusCancelled:
		return "❌ Pagamento não aprovado. Status: cancelled"
	default:
		return "❌ Pagamento não aprovado. Status: unknown"
	}
}

// HandleMyPacks lists the caller's active packs.
func (b *BotFacade) HandleMyPacks(ctx context.Context, userID int64) string {
	packs, err := b.PayUC.ActivePacks(ctx, userID)
	if err != nil {
		return "⚠️ Não foi possível consultar seus packs agora."
	}
	if len(packs) == 0 {
		return "Você não tem packs ativos. Use /start para escolher um."
	}
	sb := strings.Builder{}
	sb.WriteString("📦 Seus packs ativos:\n")
	for _, p := range packs {
		label := p.PackType
		if pack, ok := b.Catalog.Find(p.PackType); ok {
			label = pack.Label
		}
		fmt.Fprintf(&sb, "%s — expira em %s\n", label, p.ExpiresAt.Format("02/01/2006"))
	}
	return sb.String()
}

// HandlePending is the admin-only summary of outstanding charges.
func (b *BotFacade) HandlePending(ctx context.Context) string {
	pending, err := b.StatsUC.ListPending(ctx)
	if err != nil {
		return "⚠️ Falha ao listar pagamentos pendentes."
	}
	if len(pending) == 0 {
		return "Nenhum pagamento pendente."
	}
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "⏳ %d pagamentos pendentes:\n", len(pending))
	for _, rec := range pending {
		name := rec.Username
		if name == "" {
			name = fmt.Sprintf("user %d", rec.UserID)
		}
		fmt.Fprintf(&sb, "#%d %s (%s) desde %s\n", rec.PaymentID, name, rec.PackType, rec.CreatedAt.Format("02/01 15:04"))
	}
	return sb.String()
}
