package bot

import (
	"context"
	"fmt"
	"testing"

	"fxcross/internal/adapters/tinkoff"
	"fxcross/internal/domain"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

// fakeTeleContext implements the handler-facing slice of tele.Context and
// records outgoing replies.
type fakeTeleContext struct {
	tele.Context
	text    string
	payload string
	sent    []string
}

func (f *fakeTeleContext) Text() string     { return f.text }
func (f *fakeTeleContext) Chat() *tele.Chat { return &tele.Chat{ID: 7} }
func (f *fakeTeleContext) Message() *tele.Message {
	return &tele.Message{Payload: f.payload}
}

func (f *fakeTeleContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

type fakeInstrumentSearcher struct {
	instruments []tinkoff.Instrument
	err         error
}

func (f *fakeInstrumentSearcher) Instruments(_ context.Context) ([]tinkoff.Instrument, error) {
	return f.instruments, f.err
}

func TestWebhookEndpoint(t *testing.T) {
	require.Equal(t, "https://bot.example.com/telegram/secret", webhookEndpoint("https://bot.example.com", "secret"))
	require.Equal(t, "https://bot.example.com/telegram/secret", webhookEndpoint("https://bot.example.com/", "secret"))
}

func TestHandleTicker(t *testing.T) {
	b := &Bot{
		instruments: &fakeInstrumentSearcher{instruments: []tinkoff.Instrument{
			{Figi: "BBG0013HGFT4", Ticker: "USD000UTSTOM", Name: "Доллар США"},
			{Figi: "BBG004730N88", Ticker: "SBER", Name: "Сбер Банк"},
		}},
		sessions: make(map[int64]*exchangeSession),
	}

	c := &fakeTeleContext{payload: "доллар"}
	require.NoError(t, b.handleTicker(c))
	require.Len(t, c.sent, 1)
	require.Contains(t, c.sent[0], "USD000UTSTOM")
	require.Contains(t, c.sent[0], "BBG0013HGFT4")

	c = &fakeTeleContext{payload: "nothing here"}
	require.NoError(t, b.handleTicker(c))
	require.Contains(t, c.sent[0], "No instrument matches")

	c = &fakeTeleContext{payload: ""}
	require.NoError(t, b.handleTicker(c))
	require.Contains(t, c.sent[0], "Usage")
}

func TestHandleTicker_CatalogueError(t *testing.T) {
	b := &Bot{
		instruments: &fakeInstrumentSearcher{err: domain.ErrBadAuth},
		sessions:    make(map[int64]*exchangeSession),
	}

	c := &fakeTeleContext{payload: "доллар"}
	require.NoError(t, b.handleTicker(c))
	require.Equal(t, []string{noDataReply}, c.sent)
}
