package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"fxcross/internal/adapters/tinkoff"
	"fxcross/internal/config"
	"fxcross/internal/convert"
	"fxcross/internal/domain"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

const noDataReply = "No rate data available yet, try again later"

// FamilySearcher is the bank-leg capability behind the /family command.
type FamilySearcher interface {
	Families(ctx context.Context, pattern string) ([]domain.Family, error)
}

// InstrumentSearcher is the brokerage capability behind the /ticker command.
type InstrumentSearcher interface {
	Instruments(ctx context.Context) ([]tinkoff.Instrument, error)
}

// Bot wires the chat commands to the convertor: /info, /usd, /thb, /%,
// /family, /ticker and the /exchange conversation.
type Bot struct {
	tb          *tele.Bot
	convertor   *convert.ExchangeConvertor
	families    FamilySearcher
	instruments InstrumentSearcher

	mu       sync.Mutex
	sessions map[int64]*exchangeSession
}

func New(cfg config.Telegram, convertor *convert.ExchangeConvertor, families FamilySearcher, instruments InstrumentSearcher) (*Bot, error) {
	settings := tele.Settings{Token: cfg.Token}
	if !cfg.UseWebhook {
		settings.Poller = &tele.LongPoller{Timeout: 10 * time.Second}
	}

	tb, err := tele.NewBot(settings)
	if err != nil {
		return nil, err
	}

	b := &Bot{
		tb:          tb,
		convertor:   convertor,
		families:    families,
		instruments: instruments,
		sessions:    make(map[int64]*exchangeSession),
	}
	b.registerHandlers()
	return b, nil
}

func (b *Bot) registerHandlers() {
	b.tb.Handle("/info", b.handleInfo)
	b.tb.Handle("/usd", b.handleUSD)
	b.tb.Handle("/thb", b.handleTHB)
	b.tb.Handle("/%", b.handleCross)
	b.tb.Handle("/family", b.handleFamily)
	b.tb.Handle("/ticker", b.handleTicker)
	b.tb.Handle("/exchange", b.handleExchange)
	b.tb.Handle("/ex", b.handleExchange)
	b.tb.Handle("/money", b.handleExchange)
	b.tb.Handle(tele.OnText, b.handleText)
}

// RegisterWebhook tells Telegram to deliver updates to the public endpoint
// served by the HTTP router. Only called in webhook mode.
func (b *Bot) RegisterWebhook(baseURL string) error {
	return b.tb.SetWebhook(&tele.Webhook{
		Endpoint: &tele.WebhookEndpoint{PublicURL: webhookEndpoint(baseURL, b.tb.Token)},
	})
}

func webhookEndpoint(base, token string) string {
	return strings.TrimSuffix(base, "/") + "/telegram/" + token
}

// Start begins long polling; it blocks until Stop is called. Not used in
// webhook mode.
func (b *Bot) Start() { b.tb.Start() }

func (b *Bot) Stop() { b.tb.Stop() }

// ProcessUpdate feeds one webhook update through the registered handlers.
func (b *Bot) ProcessUpdate(u tele.Update) { b.tb.ProcessUpdate(u) }

func (b *Bot) handleInfo(c tele.Context) error {
	ctx := context.Background()
	rub := b.convertor.RefreshRUB(ctx)
	thb := b.convertor.RefreshTHB(ctx)
	cross, err := b.convertor.CrossRate(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuoteYet) {
			return c.Send(noDataReply)
		}
		logrus.Errorf("Info command failed: %v", err)
		return c.Send(noDataReply)
	}
	return c.Send(rub.Message + thb.Message + cross.Message)
}

func (b *Bot) handleUSD(c tele.Context) error {
	return b.sendLeg(c, b.convertor.RefreshRUB(context.Background()))
}

func (b *Bot) handleTHB(c tele.Context) error {
	return b.sendLeg(c, b.convertor.RefreshTHB(context.Background()))
}

func (b *Bot) sendLeg(c tele.Context, quote *domain.Quote) error {
	if quote == nil {
		return c.Send(noDataReply)
	}
	return c.Send(quote.Message)
}

func (b *Bot) handleCross(c tele.Context) error {
	cross, err := b.convertor.CrossRate(context.Background())
	if err != nil {
		if !errors.Is(err, domain.ErrNoQuoteYet) {
			logrus.Errorf("Cross command failed: %v", err)
		}
		return c.Send(noDataReply)
	}
	return c.Send(cross.Message)
}

func (b *Bot) handleFamily(c tele.Context) error {
	pattern := strings.TrimSpace(c.Message().Payload)
	if pattern == "" {
		return c.Send("Usage: /family <currency name>")
	}

	matches, err := b.families.Families(context.Background(), pattern)
	if err != nil {
		logrus.Errorf("Family search %q failed: %v", pattern, err)
		return c.Send(noDataReply)
	}
	if len(matches) == 0 {
		return c.Send("No currency family matches " + pattern)
	}

	var sb strings.Builder
	for _, f := range matches {
		sb.WriteString(f.Family)
		sb.WriteString(" : ")
		sb.WriteString(f.Description)
		sb.WriteString("\n")
	}
	return c.Send(sb.String())
}

func (b *Bot) handleTicker(c tele.Context) error {
	pattern := strings.TrimSpace(c.Message().Payload)
	if pattern == "" {
		return c.Send("Usage: /ticker <instrument name>")
	}

	all, err := b.instruments.Instruments(context.Background())
	if err != nil {
		logrus.Errorf("Instrument search %q failed: %v", pattern, err)
		return c.Send(noDataReply)
	}
	matches, err := tinkoff.SearchByName(all, pattern)
	if err != nil {
		logrus.Errorf("Instrument search %q failed: %v", pattern, err)
		return c.Send(noDataReply)
	}
	if len(matches) == 0 {
		return c.Send("No instrument matches " + pattern)
	}

	var sb strings.Builder
	for _, in := range matches {
		sb.WriteString(in.Ticker)
		sb.WriteString(" : ")
		sb.WriteString(in.Name)
		sb.WriteString(" (")
		sb.WriteString(in.Figi)
		sb.WriteString(")\n")
	}
	return c.Send(sb.String())
}
