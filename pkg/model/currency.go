package model

import (
	"github.com/duxnet-project/duxnet/pkg/duxerrors"
)

// Currency is one of the assets escrows and service prices can be
// denominated in.
type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDC Currency = "USDC"
	CurrencyLTC  Currency = "LTC"
	CurrencyXMR  Currency = "XMR"
	CurrencyDOGE Currency = "DOGE"
	CurrencyDUX  Currency = "DUX"
)

func SupportedCurrencies() []Currency {
	return []Currency{
		CurrencyBTC,
		CurrencyETH,
		CurrencyUSDC,
		CurrencyLTC,
		CurrencyXMR,
		CurrencyDOGE,
		CurrencyDUX,
	}
}

func (c Currency) IsSupported() bool {
	for _, supported := range SupportedCurrencies() {
		if c == supported {
			return true
		}
	}
	return false
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency validates a caller-supplied currency string.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(s)
	if !c.IsSupported() {
		return "", duxerrors.NewInvalidInput("unsupported currency: %q", s)
	}
	return c, nil
}
