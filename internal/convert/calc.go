package convert

import (
	"errors"
	"fmt"
	"math"
)

var ErrNegativeRate = errors.New("negative rate")

// publishedMargin is the extra 2% applied on top of the computed cross rate.
const publishedMargin = 1.02

// Commissions are the three transfer fees, each in percent (3.0 means 3%).
type Commissions struct {
	BrokerPct    float64 // brokerage operation fee
	WirePct      float64 // outgoing SWIFT transfer fee
	ReceivingPct float64 // receiving bank's deposit fee
}

// DefaultCommissions is the reference fee schedule: broker 2.257%,
// wire 3%, receiving bank 0.21%.
func DefaultCommissions() Commissions {
	return Commissions{BrokerPct: 2.257, WirePct: 3.0, ReceivingPct: 0.21}
}

// CrossRate derives the commission-adjusted cross rate from the two leg
// rates, plus the published variant with the margin on top. A zero leg
// yields (0, 0) rather than a division by zero; a negative leg is rejected.
func CrossRate(legA, legB float64, c Commissions) (cross, published float64, err error) {
	if legA < 0 || legB < 0 {
		return 0, 0, fmt.Errorf("leg rates %v/%v: %w", legA, legB, ErrNegativeRate)
	}
	if legA == 0 || legB == 0 {
		return 0, 0, nil
	}

	ratio := legA / legB *
		(1 - c.BrokerPct/100) *
		(1 - c.WirePct/100) *
		(1 - c.ReceivingPct/100)

	cross = round2(1 / ratio)
	published = round2(cross * publishedMargin)
	return cross, published, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
