package binance

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointWeight(t *testing.T) {
	cases := []struct {
		name     string
		endpoint Endpoint
		query    string
		weight   uint64
	}{
		{"depth without query", SPOT_DEPTH, "", 5},
		{"depth default limit", SPOT_DEPTH, "symbol=BTCUSDT", 1},
		{"depth limit 5", SPOT_DEPTH, "symbol=BTCUSDT&limit=5", 1},
		{"depth limit 100", SPOT_DEPTH, "symbol=BTCUSDT&limit=100", 1},
		{"depth limit 101", SPOT_DEPTH, "symbol=BTCUSDT&limit=101", 5},
		{"depth limit 500", SPOT_DEPTH, "symbol=BTCUSDT&limit=500", 5},
		{"depth limit 1000", SPOT_DEPTH, "symbol=BTCUSDT&limit=1000", 10},
		{"depth limit 5000", SPOT_DEPTH, "symbol=BTCUSDT&limit=5000", 50},
		{"depth limit 5001", SPOT_DEPTH, "symbol=BTCUSDT&limit=5001", 100},
		{"depth bad limit", SPOT_DEPTH, "symbol=BTCUSDT&limit=many", 5},
		{"depth bad query", SPOT_DEPTH, "symbol=%zz", 5},
		{"futures depth", FUTURE_DEPTH, "symbol=BTCUSDT&limit=1000", 10},
		{"ticker one symbol", SPOT_TICKER_24HR, "symbol=BTCUSDT", 1},
		{"ticker all symbols", SPOT_TICKER_24HR, "", 40},
		{"ticker empty symbol", SPOT_TICKER_24HR, "symbol=", 40},
		{"price one symbol", SPOT_TICKER_PRICE, "symbol=BTCUSDT", 1},
		{"price all symbols", SPOT_TICKER_PRICE, "", 2},
		{"book ticker all symbols", SPOT_BOOK_TICKER, "", 2},
		{"futures book ticker", FUTURE_BOOK_TICKER, "symbol=BTCUSDT", 1},
		{"open orders one symbol", SPOT_OPEN_ORDERS, "symbol=BTCUSDT", 1},
		{"open orders all symbols", SPOT_OPEN_ORDERS, "", 3},
		{"exchange info", SPOT_EXCHANGE_INFO, "", 10},
		{"account", SPOT_ACCOUNT, "", 10},
		{"order rate limit", SPOT_RATE_LIMIT_ORDER, "", 20},
		{"futures income", FUTURE_INCOME, "", 30},
		{"savings coins", SAVINGS_ALL_COINS, "", 10},
		{"api restrictions", ACCOUNT_API_RESTRICTIONS, "", 1},
		{"unknown endpoint", Endpoint(-1), "", 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.weight, EndpointWeight(c.endpoint, c.query))
		})
	}
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "/api/v3/depth", SPOT_DEPTH.Path())
	assert.Equal(t, CATEGORY_FUTURES, FUTURE_DEPTH.Category())
	assert.Equal(t, "SpotV3/api/v3/order", SPOT_ORDER.String())
	assert.Equal(t, "Endpoint(-1)", Endpoint(-1).String())

	assert.True(t, isOrderPlacement(http.MethodPost, SPOT_ORDER))
	assert.True(t, isOrderPlacement(http.MethodPost, SPOT_OCO))
	assert.False(t, isOrderPlacement(http.MethodGet, SPOT_ORDER))
	assert.False(t, isOrderPlacement(http.MethodDelete, SPOT_ORDER))
	assert.False(t, isOrderPlacement(http.MethodPost, SPOT_USER_DATA_STREAM))
	assert.False(t, isOrderPlacement(http.MethodPost, SPOT_ORDER_TEST))
	assert.False(t, SPOT_ALL_ORDER_LIST.IsOrder())
	assert.False(t, SPOT_OPEN_ORDER_LIST.IsOrder())
	assert.True(t, SPOT_ORDER_LIST.IsOrder())

	for endpoint, meta := range endpoints {
		assert.NotEmpty(t, meta.path, endpoint.String())
		assert.NotZero(t, meta.weight, endpoint.String())
	}
}
