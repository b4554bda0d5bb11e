package utils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBigInt(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount   *big.Int
		decimals uint8
		want     string
	}{
		{nil, 6, "0"},
		{big.NewInt(0), 6, "0"},
		{big.NewInt(1234500), 6, "1.2345"},
		{big.NewInt(1000000000), 6, "1000"},
		{big.NewInt(5), 6, "0.000005"},
		{big.NewInt(-2500000), 6, "-2.5"},
		{big.NewInt(42), 0, "42"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatBigInt(tc.amount, tc.decimals))
	}
}

func TestParseUnits(t *testing.T) {
	t.Parallel()

	v, err := ParseUnits("1000", 6)
	require.NoError(t, err)
	assert.Equal(t, "1000000000", v.String())

	v, err = ParseUnits("12.5", 6)
	require.NoError(t, err)
	assert.Equal(t, "12500000", v.String())

	v, err = ParseUnits(".75", 6)
	require.NoError(t, err)
	assert.Equal(t, "750000", v.String())

	for _, bad := range []string{"", "-1", "1.1234567", "abc", "1.2.3"} {
		_, err := ParseUnits(bad, 6)
		assert.Error(t, err, bad)
	}
}

func TestShortAddress(t *testing.T) {
	t.Parallel()

	addr := common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678")
	assert.Equal(t, "0x1234...5678", ShortAddress(addr))
}
