package binance

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	. "github.com/strengthening/goghostex"
)

type Spot struct {
	*Binance
}

type Ticker struct {
	Symbol    string  `json:"symbol"`
	Last      float64 `json:"last"`
	Buy       float64 `json:"buy"`
	Sell      float64 `json:"sell"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Vol       float64 `json:"vol"`
	Timestamp int64   `json:"timestamp"` // millisecond
	Date      string  `json:"date"`
}

type Depth struct {
	Symbol       string       `json:"symbol"`
	LastUpdateId int64        `json:"last_update_id"`
	BidList      []PriceLevel `json:"bid_list"`
	AskList      []PriceLevel `json:"ask_list"`
}

// OrderResult is the FULL response of a new order; the test endpoint
// answers {} and leaves it empty.
type OrderResult struct {
	Symbol        string `json:"symbol"`
	OrderId       int64  `json:"orderId"`
	OrderListId   int64  `json:"orderListId"`
	ClientOrderId string `json:"clientOrderId"`
	TransactTime  int64  `json:"transactTime"`
	Price         string `json:"price"`
	OrigQty       string `json:"origQty"`
	ExecutedQty   string `json:"executedQty"`
	Status        string `json:"status"`
	TimeInForce   string `json:"timeInForce"`
	Type          string `json:"type"`
	Side          string `json:"side"`
}

func (this *Spot) GetServerTime(ctx context.Context) (time.Time, []byte, error) {
	var response = struct {
		ServerTime int64 `json:"serverTime"`
	}{}
	resp, err := this.DoRequest(ctx, http.MethodGet, SPOT_TIME, nil, false, &response)
	if err != nil {
		return time.Time{}, resp, err
	}
	return time.UnixMilli(response.ServerTime).In(this.config.Location), resp, nil
}

func (this *Spot) GetExchangeInfo(ctx context.Context) (*ExchangeInfo, []byte, error) {
	var info ExchangeInfo
	resp, err := this.DoRequest(ctx, http.MethodGet, SPOT_EXCHANGE_INFO, nil, false, &info)
	if err != nil {
		return nil, resp, err
	}
	return &info, resp, nil
}

// GetDepth returns the order book of symbol. limit <= 0 leaves the server default.
func (this *Spot) GetDepth(ctx context.Context, symbol string, limit int) (*Depth, []byte, error) {
	var params = url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var response = struct {
		LastUpdateId int64        `json:"lastUpdateId"`
		Bids         []PriceLevel `json:"bids"`
		Asks         []PriceLevel `json:"asks"`
	}{}
	resp, err := this.DoRequest(ctx, http.MethodGet, SPOT_DEPTH, params, false, &response)
	if err != nil {
		return nil, resp, err
	}

	var depth = &Depth{
		Symbol:       strings.ToUpper(symbol),
		LastUpdateId: response.LastUpdateId,
		BidList:      response.Bids,
		AskList:      response.Asks,
	}
	return depth, resp, nil
}

func (this *Spot) GetTicker24hr(ctx context.Context, symbol string) (*Ticker, []byte, error) {
	var params = url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))

	var response = struct {
		Symbol    string `json:"symbol"`
		Last      string `json:"lastPrice"`
		Buy       string `json:"bidPrice"`
		Sell      string `json:"askPrice"`
		Volume    string `json:"volume"`
		Low       string `json:"lowPrice"`
		High      string `json:"highPrice"`
		Timestamp int64  `json:"closeTime"`
	}{}
	resp, err := this.DoRequest(ctx, http.MethodGet, SPOT_TICKER_24HR, params, false, &response)
	if err != nil {
		return nil, resp, err
	}

	var ticker = Ticker{
		Symbol:    response.Symbol,
		Last:      ToFloat64(response.Last),
		Buy:       ToFloat64(response.Buy),
		Sell:      ToFloat64(response.Sell),
		High:      ToFloat64(response.High),
		Low:       ToFloat64(response.Low),
		Vol:       ToFloat64(response.Volume),
		Timestamp: response.Timestamp,
		Date:      time.UnixMilli(response.Timestamp).In(this.config.Location).Format(GO_BIRTHDAY),
	}
	return &ticker, resp, nil
}

// GetOrderRateLimits returns the ORDERS limits with the current count of the account.
func (this *Spot) GetOrderRateLimits(ctx context.Context) ([]RateLimit, []byte, error) {
	var limits = make([]RateLimit, 0)
	resp, err := this.DoRequest(ctx, http.MethodGet, SPOT_RATE_LIMIT_ORDER, nil, true, &limits)
	if err != nil {
		return nil, resp, err
	}
	return limits, resp, nil
}

// PlaceOrder sends a signed new order, params as documented for POST /api/v3/order.
func (this *Spot) PlaceOrder(ctx context.Context, params url.Values) (*OrderResult, []byte, error) {
	return this.postOrder(ctx, SPOT_ORDER, params)
}

// TestOrder validates params without placing the order. Only request weight
// is charged, the unfilled order count is left alone.
func (this *Spot) TestOrder(ctx context.Context, params url.Values) (*OrderResult, []byte, error) {
	return this.postOrder(ctx, SPOT_ORDER_TEST, params)
}

func (this *Spot) postOrder(ctx context.Context, endpoint Endpoint, params url.Values) (*OrderResult, []byte, error) {
	var values = url.Values{}
	for key, value := range params {
		values[key] = value
	}
	if values.Get("newClientOrderId") == "" {
		values.Set("newClientOrderId", UUID())
	}
	var result OrderResult
	resp, err := this.DoRequest(ctx, http.MethodPost, endpoint, values, true, &result)
	if err != nil {
		return nil, resp, err
	}
	return &result, resp, nil
}

// StartUserDataStream opens a user data stream and returns its listen key.
// Subscribing the listen key on a SpotStream delivers the account events.
// The key expires after 60 minutes without a keep alive.
func (this *Spot) StartUserDataStream(ctx context.Context) (string, []byte, error) {
	if this.config.ApiKey == "" {
		return "", nil, errors.New("user data stream needs an api key")
	}
	var response = struct {
		ListenKey string `json:"listenKey"`
	}{}
	resp, err := this.DoRequest(ctx, http.MethodPost, SPOT_USER_DATA_STREAM, nil, false, &response)
	if err != nil {
		return "", resp, err
	}
	if response.ListenKey == "" {
		return "", resp, errors.New("empty listen key in response")
	}
	return response.ListenKey, resp, nil
}

// KeepAliveUserDataStream extends the validity of listenKey by 60 minutes.
func (this *Spot) KeepAliveUserDataStream(ctx context.Context, listenKey string) ([]byte, error) {
	return this.userDataStream(ctx, http.MethodPut, listenKey)
}

func (this *Spot) CloseUserDataStream(ctx context.Context, listenKey string) ([]byte, error) {
	return this.userDataStream(ctx, http.MethodDelete, listenKey)
}

func (this *Spot) userDataStream(ctx context.Context, httpMethod, listenKey string) ([]byte, error) {
	if this.config.ApiKey == "" {
		return nil, errors.New("user data stream needs an api key")
	}
	if listenKey == "" {
		return nil, errors.New("listen key is empty")
	}
	var params = url.Values{}
	params.Set("listenKey", listenKey)
	return this.DoRequest(ctx, httpMethod, SPOT_USER_DATA_STREAM, params, false, nil)
}
