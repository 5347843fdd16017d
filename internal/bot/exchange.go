package bot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v3"
)

type sessionState int

const (
	stateAwaitRate sessionState = iota
	stateAwaitAmount
)

type exchangeSession struct {
	state sessionState
	rate  float64
}

var (
	ratePattern   = regexp.MustCompile(`\d+\.?\d*`)
	amountPattern = regexp.MustCompile(`^(?P<value>\d+)(?P<name>(THB|RUB|))$`)

	errBadAmount = errors.New("incorrect amount input")
)

// parseRate extracts the first decimal number from free-form text.
func parseRate(text string) (float64, bool) {
	match := ratePattern.FindString(strings.ToUpper(text))
	if match == "" {
		return 0, false
	}
	rate, err := decimal.NewFromString(match)
	if err != nil {
		return 0, false
	}
	f, _ := rate.Float64()
	return f, true
}

// parseAmount splits an "<amount>[THB|RUB]" input into value and currency.
// A missing currency suffix means RUB.
func parseAmount(text string) (decimal.Decimal, string, error) {
	match := amountPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(text)))
	if match == nil {
		return decimal.Zero, "", errBadAmount
	}
	value, err := decimal.NewFromString(match[1])
	if err != nil {
		return decimal.Zero, "", errBadAmount
	}
	name := match[2]
	if name == "" {
		name = "RUB"
	}
	return value, name, nil
}

// convertAmount applies the cross rate: RUB amounts divide by it, THB
// amounts multiply, both rounded to 2 decimal places.
func convertAmount(value decimal.Decimal, currency string, rate float64) string {
	r := decimal.NewFromFloat(rate)
	if currency == "THB" {
		converted := value.Mul(r).Round(2)
		return fmt.Sprintf("I will convert THB to RUB\n%sTHB = %sRUB", value.String(), converted.String())
	}
	converted := value.Div(r).Round(2)
	return fmt.Sprintf("I will convert RUB to THB\n%sRUB = %sTHB", value.String(), converted.String())
}

func (b *Bot) session(chatID int64) *exchangeSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) setSession(chatID int64, s *exchangeSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == nil {
		delete(b.sessions, chatID)
		return
	}
	b.sessions[chatID] = s
}

func (b *Bot) handleExchange(c tele.Context) error {
	b.setSession(c.Chat().ID, &exchangeSession{state: stateAwaitRate})
	return c.Send("Enter your rate or skip")
}

// handleText drives the /exchange conversation; text outside a session is
// ignored.
func (b *Bot) handleText(c tele.Context) error {
	sess := b.session(c.Chat().ID)
	if sess == nil {
		return nil
	}

	switch sess.state {
	case stateAwaitRate:
		rate, ok := parseRate(c.Text())
		if ok && rate <= 0 {
			// a zero rate would divide by zero in the amount conversion
			return c.Send("Rate must be positive, enter your rate or skip")
		}
		if !ok {
			cross, err := b.convertor.CrossRate(context.Background())
			if err != nil {
				b.setSession(c.Chat().ID, nil)
				return c.Send(noDataReply)
			}
			rate = cross.Published
		}
		sess.state = stateAwaitAmount
		sess.rate = rate
		return c.Send(fmt.Sprintf("Ready to convert with rate %v\nEnter amount of money with THB or RUB in the end, END to finish", rate))

	case stateAwaitAmount:
		if strings.EqualFold(strings.TrimSpace(c.Text()), "END") {
			b.setSession(c.Chat().ID, nil)
			return c.Send("Exchange operation has been done")
		}
		value, currency, err := parseAmount(c.Text())
		if err != nil {
			return c.Send("Incorrect Input")
		}
		return c.Send(convertAmount(value, currency, sess.rate))
	}
	return nil
}
