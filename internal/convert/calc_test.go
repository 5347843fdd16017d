package convert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCrossRate_ZeroLegYieldsZeroWithoutError(t *testing.T) {
	for _, legs := range [][2]float64{{0, 81.75}, {34.5, 0}, {0, 0}} {
		cross, published, err := CrossRate(legs[0], legs[1], DefaultCommissions())
		require.NoError(t, err)
		require.Zero(t, cross)
		require.Zero(t, published)
	}
}

func TestCrossRate_EqualLegsNoFees(t *testing.T) {
	cross, published, err := CrossRate(30, 30, Commissions{})
	require.NoError(t, err)
	require.Equal(t, 1.00, cross)
	require.Equal(t, 1.02, published)
}

func TestCrossRate_CommissionsShrinkTheRatio(t *testing.T) {
	// 50% broker fee halves the ratio: 30/30 * 0.5 = 0.5, inverted 2.00
	cross, published, err := CrossRate(30, 30, Commissions{BrokerPct: 50})
	require.NoError(t, err)
	require.Equal(t, 2.00, cross)
	require.Equal(t, 2.04, published)
}

func TestCrossRate_NegativeLegRejected(t *testing.T) {
	_, _, err := CrossRate(-1, 30, DefaultCommissions())
	require.ErrorIs(t, err, ErrNegativeRate)

	_, _, err = CrossRate(30, -81.75, DefaultCommissions())
	require.ErrorIs(t, err, ErrNegativeRate)
}

func TestDefaultCommissions_ReferenceSchedule(t *testing.T) {
	c := DefaultCommissions()
	require.Equal(t, 2.257, c.BrokerPct)
	require.Equal(t, 3.0, c.WirePct)
	require.Equal(t, 0.21, c.ReceivingPct)
}
