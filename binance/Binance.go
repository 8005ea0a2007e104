package binance

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	. "github.com/strengthening/goghostex"
)

const (
	ENDPOINT        = "https://api.binance.com"
	FUTURE_ENDPOINT = "https://fapi.binance.com"
	WS_ENDPOINT     = "wss://stream.binance.com:9443"

	TESTNET_ENDPOINT    = "https://testnet.binance.vision"
	TESTNET_WS_ENDPOINT = "wss://testnet.binance.vision"
)

var nowFunc = time.Now

type RateLimit struct {
	RateLimitType string `json:"rateLimitType"`
	Interval      string `json:"interval"`
	IntervalNum   uint64 `json:"intervalNum"`
	Limit         uint64 `json:"limit"`
	Count         uint64 `json:"count,omitempty"` // only in the order rate limit response
}

type Filter struct {
	FilterType string `json:"filterType"`
	MaxPrice   string `json:"maxPrice"`
	MinPrice   string `json:"minPrice"`
	TickSize   string `json:"tickSize"`
}

type TradeSymbol struct {
	Symbol               string   `json:"symbol"`
	Status               string   `json:"status"`
	BaseAsset            string   `json:"baseAsset"`
	BaseAssetPrecision   int      `json:"baseAssetPrecision"`
	QuoteAsset           string   `json:"quoteAsset"`
	QuotePrecision       int      `json:"quotePrecision"`
	OrderTypes           []string `json:"orderTypes"`
	IcebergAllowed       bool     `json:"icebergAllowed"`
	OcoAllowed           bool     `json:"ocoAllowed"`
	IsSpotTradingAllowed bool     `json:"isSpotTradingAllowed"`
	Filters              []Filter `json:"filters"`
}

type ExchangeInfo struct {
	Timezone   string        `json:"timezone"`
	ServerTime int64         `json:"serverTime"`
	RateLimits []RateLimit   `json:"rateLimits"`
	Symbols    []TradeSymbol `json:"symbols"`
}

type Binance struct {
	config *APIConfig

	// nil governors admit every call
	IpLimiter    *IpRateGovernor
	OrderLimiter *OrderRateGovernor

	Spot *Spot
}

// New returns a client without rate limit governors.
func New(config *APIConfig) *Binance {
	config.Init()
	if config.Endpoint == "" {
		config.Endpoint = ENDPOINT
	}
	if config.FutureEndpoint == "" {
		config.FutureEndpoint = FUTURE_ENDPOINT
	}
	if config.WsEndpoint == "" {
		config.WsEndpoint = WS_ENDPOINT
	}
	var binance = &Binance{config: config}
	binance.Spot = &Spot{Binance: binance}
	return binance
}

// NewWithRateLimits bootstraps the request weight governor, and the order
// count governor when api keys are configured, before returning the client.
func NewWithRateLimits(ctx context.Context, config *APIConfig) (*Binance, error) {
	var binance = New(config)

	ipLimiter, err := NewIpRateGovernor(ctx, config)
	if err != nil {
		return nil, err
	}
	binance.IpLimiter = ipLimiter

	if config.ApiKey != "" && config.ApiSecretKey != "" {
		orderLimiter, err := NewOrderRateGovernor(ctx, config, ipLimiter)
		if err != nil {
			return nil, err
		}
		binance.OrderLimiter = orderLimiter
	}
	return binance, nil
}

// LoadConfig reads an APIConfig with the production endpoints as defaults.
func LoadConfig(path string) (*APIConfig, error) {
	return LoadAPIConfig(path, map[string]interface{}{
		"endpoint":        ENDPOINT,
		"future_endpoint": FUTURE_ENDPOINT,
		"ws_endpoint":     WS_ENDPOINT,
	})
}

func (this *Binance) GetExchangeName() string {
	return BINANCE
}

func (this *Binance) Config() *APIConfig {
	return this.config
}

func (this *Binance) host(endpoint Endpoint) string {
	if endpoint.Category() == CATEGORY_FUTURES {
		return this.config.FutureEndpoint
	}
	return this.config.Endpoint
}

// DoRequest admits the call through the governors, sends it, reconciles the
// governors from the response headers and decodes the body into response.
func (this *Binance) DoRequest(
	ctx context.Context,
	httpMethod string,
	endpoint Endpoint,
	params url.Values,
	signed bool,
	response interface{},
) ([]byte, error) {
	resp, err := this.doRequest(ctx, httpMethod, endpoint, params, signed)
	if err != nil {
		if resp != nil {
			return resp.Body, err
		}
		return nil, err
	}
	if response == nil {
		return resp.Body, nil
	}
	if err := json.Unmarshal(resp.Body, response); err != nil {
		return resp.Body, errors.Wrapf(err, "decode %s response", endpoint)
	}
	return resp.Body, nil
}

func (this *Binance) doRequest(
	ctx context.Context,
	httpMethod string,
	endpoint Endpoint,
	params url.Values,
	signed bool,
) (*HttpResponse, error) {
	if params == nil {
		params = url.Values{}
	}

	// a rejection by either governor leaves both uncharged
	var query = params.Encode()
	var orderAcquired = false
	if this.OrderLimiter != nil && isOrderPlacement(httpMethod, endpoint) {
		if err := this.OrderLimiter.Acquire(); err != nil {
			return nil, err
		}
		orderAcquired = true
	}
	if this.IpLimiter != nil {
		if err := this.IpLimiter.Acquire(endpoint, query); err != nil {
			if orderAcquired {
				this.OrderLimiter.release(1)
			}
			return nil, err
		}
	}

	if signed {
		signedQuery, err := BuildSignedQuery(params, this.config.ApiSecretKey, this.config.RecvWindow, nowFunc())
		if err != nil {
			return nil, err
		}
		query = signedQuery
	}

	var reqUrl = this.host(endpoint) + endpoint.Path()
	if query != "" {
		reqUrl += "?" + query
	}
	var headers = map[string]string{}
	if this.config.ApiKey != "" {
		headers["X-MBX-APIKEY"] = this.config.ApiKey
	}

	resp, err := NewHttpRequest(ctx, this.config.HttpClient, httpMethod, reqUrl, "", headers)
	if resp != nil {
		if this.IpLimiter != nil {
			this.IpLimiter.ReconcileHeaders(resp.Header)
		}
		if this.OrderLimiter != nil {
			this.OrderLimiter.ReconcileHeaders(resp.Header)
		}
	}
	if err != nil {
		if IsTooManyRequests(err) {
			this.config.Logger.Warn("binance rejected the call for rate limits",
				zap.Stringer("endpoint", endpoint), zap.Error(err))
		}
		return resp, err
	}
	return resp, nil
}
