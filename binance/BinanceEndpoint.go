package binance

import (
	"fmt"
	"net/http"
)

type EndpointCategory int

const (
	CATEGORY_SPOT_V3 EndpointCategory = 1 + iota
	CATEGORY_FUTURES
	CATEGORY_SAVINGS
	CATEGORY_ACCOUNT_GENERAL
)

func (c EndpointCategory) String() string {
	switch c {
	case CATEGORY_SPOT_V3:
		return "SpotV3"
	case CATEGORY_FUTURES:
		return "Futures"
	case CATEGORY_SAVINGS:
		return "Savings"
	case CATEGORY_ACCOUNT_GENERAL:
		return "AccountGeneral"
	default:
		return "Unknown"
	}
}

// Endpoint identifies one rest api of the exchange.
type Endpoint int

const (
	SPOT_PING Endpoint = 1 + iota
	SPOT_TIME
	SPOT_EXCHANGE_INFO
	SPOT_DEPTH
	SPOT_TRADES
	SPOT_HISTORICAL_TRADES
	SPOT_AGG_TRADES
	SPOT_KLINES
	SPOT_AVG_PRICE
	SPOT_TICKER_24HR
	SPOT_TICKER_PRICE
	SPOT_BOOK_TICKER
	SPOT_ORDER
	SPOT_ORDER_TEST
	SPOT_OPEN_ORDERS
	SPOT_ALL_ORDERS
	SPOT_OCO
	SPOT_ORDER_LIST
	SPOT_ALL_ORDER_LIST
	SPOT_OPEN_ORDER_LIST
	SPOT_ACCOUNT
	SPOT_MY_TRADES
	SPOT_RATE_LIMIT_ORDER
	SPOT_MY_PREVENTED_MATCHES
	SPOT_MY_ALLOCATIONS
	SPOT_ACCOUNT_COMMISSION
	SPOT_USER_DATA_STREAM

	FUTURE_PING
	FUTURE_TIME
	FUTURE_EXCHANGE_INFO
	FUTURE_DEPTH
	FUTURE_TRADES
	FUTURE_HISTORICAL_TRADES
	FUTURE_AGG_TRADES
	FUTURE_KLINES
	FUTURE_CONTINUOUS_KLINES
	FUTURE_INDEX_PRICE_KLINES
	FUTURE_MARK_PRICE_KLINES
	FUTURE_PREMIUM_INDEX
	FUTURE_FUNDING_RATE
	FUTURE_TICKER_24HR
	FUTURE_TICKER_PRICE
	FUTURE_BOOK_TICKER
	FUTURE_ORDER
	FUTURE_ALL_FORCE_ORDERS
	FUTURE_ALL_OPEN_ORDERS
	FUTURE_ALL_ORDERS
	FUTURE_OPEN_ORDERS
	FUTURE_USER_TRADES
	FUTURE_POSITION_SIDE
	FUTURE_POSITION_RISK
	FUTURE_BALANCE
	FUTURE_ACCOUNT
	FUTURE_LEVERAGE
	FUTURE_MARGIN_TYPE
	FUTURE_POSITION_MARGIN
	FUTURE_INCOME
	FUTURE_OPEN_INTEREST
	FUTURE_OPEN_INTEREST_HIST
	FUTURE_TOP_LONG_SHORT_ACCOUNT_RATIO
	FUTURE_TOP_LONG_SHORT_POSITION_RATIO
	FUTURE_GLOBAL_LONG_SHORT_ACCOUNT_RATIO
	FUTURE_TAKER_LONG_SHORT_RATIO
	FUTURE_LVT_KLINES
	FUTURE_INDEX_INFO
	FUTURE_USER_DATA_STREAM

	SAVINGS_ALL_COINS
	SAVINGS_ASSET_DETAIL
	SAVINGS_DEPOSIT_ADDRESS
	SAVINGS_SPOT_FUTURES_TRANSFER

	ACCOUNT_API_RESTRICTIONS
)

type endpointMeta struct {
	category EndpointCategory
	path     string
	weight   uint64 // category default, used when no rule depends on the query
}

var endpoints = map[Endpoint]endpointMeta{
	SPOT_PING:                 {CATEGORY_SPOT_V3, "/api/v3/ping", 1},
	SPOT_TIME:                 {CATEGORY_SPOT_V3, "/api/v3/time", 1},
	SPOT_EXCHANGE_INFO:        {CATEGORY_SPOT_V3, "/api/v3/exchangeInfo", 10},
	SPOT_DEPTH:                {CATEGORY_SPOT_V3, "/api/v3/depth", 5},
	SPOT_TRADES:               {CATEGORY_SPOT_V3, "/api/v3/trades", 5},
	SPOT_HISTORICAL_TRADES:    {CATEGORY_SPOT_V3, "/api/v3/historicalTrades", 5},
	SPOT_AGG_TRADES:           {CATEGORY_SPOT_V3, "/api/v3/aggTrades", 1},
	SPOT_KLINES:               {CATEGORY_SPOT_V3, "/api/v3/klines", 1},
	SPOT_AVG_PRICE:            {CATEGORY_SPOT_V3, "/api/v3/avgPrice", 1},
	SPOT_TICKER_24HR:          {CATEGORY_SPOT_V3, "/api/v3/ticker/24hr", 40},
	SPOT_TICKER_PRICE:         {CATEGORY_SPOT_V3, "/api/v3/ticker/price", 2},
	SPOT_BOOK_TICKER:          {CATEGORY_SPOT_V3, "/api/v3/ticker/bookTicker", 2},
	SPOT_ORDER:                {CATEGORY_SPOT_V3, "/api/v3/order", 1},
	SPOT_ORDER_TEST:           {CATEGORY_SPOT_V3, "/api/v3/order/test", 1},
	SPOT_OPEN_ORDERS:          {CATEGORY_SPOT_V3, "/api/v3/openOrders", 3},
	SPOT_ALL_ORDERS:           {CATEGORY_SPOT_V3, "/api/v3/allOrders", 10},
	SPOT_OCO:                  {CATEGORY_SPOT_V3, "/api/v3/order/oco", 1},
	SPOT_ORDER_LIST:           {CATEGORY_SPOT_V3, "/api/v3/orderList", 2},
	SPOT_ALL_ORDER_LIST:       {CATEGORY_SPOT_V3, "/api/v3/allOrderList", 10},
	SPOT_OPEN_ORDER_LIST:      {CATEGORY_SPOT_V3, "/api/v3/openOrderList", 3},
	SPOT_ACCOUNT:              {CATEGORY_SPOT_V3, "/api/v3/account", 10},
	SPOT_MY_TRADES:            {CATEGORY_SPOT_V3, "/api/v3/myTrades", 10},
	SPOT_RATE_LIMIT_ORDER:     {CATEGORY_SPOT_V3, "/api/v3/rateLimit/order", 20},
	SPOT_MY_PREVENTED_MATCHES: {CATEGORY_SPOT_V3, "/api/v3/myPreventedMatches", 10},
	SPOT_MY_ALLOCATIONS:       {CATEGORY_SPOT_V3, "/api/v3/myAllocations", 10},
	SPOT_ACCOUNT_COMMISSION:   {CATEGORY_SPOT_V3, "/api/v3/account/commission", 20},
	SPOT_USER_DATA_STREAM:     {CATEGORY_SPOT_V3, "/api/v3/userDataStream", 1},

	FUTURE_PING:                            {CATEGORY_FUTURES, "/fapi/v1/ping", 1},
	FUTURE_TIME:                            {CATEGORY_FUTURES, "/fapi/v1/time", 1},
	FUTURE_EXCHANGE_INFO:                   {CATEGORY_FUTURES, "/fapi/v1/exchangeInfo", 1},
	FUTURE_DEPTH:                           {CATEGORY_FUTURES, "/fapi/v1/depth", 5},
	FUTURE_TRADES:                          {CATEGORY_FUTURES, "/fapi/v1/trades", 5},
	FUTURE_HISTORICAL_TRADES:               {CATEGORY_FUTURES, "/fapi/v1/historicalTrades", 20},
	FUTURE_AGG_TRADES:                      {CATEGORY_FUTURES, "/fapi/v1/aggTrades", 20},
	FUTURE_KLINES:                          {CATEGORY_FUTURES, "/fapi/v1/klines", 1},
	FUTURE_CONTINUOUS_KLINES:               {CATEGORY_FUTURES, "/fapi/v1/continuousKlines", 1},
	FUTURE_INDEX_PRICE_KLINES:              {CATEGORY_FUTURES, "/fapi/v1/indexPriceKlines", 1},
	FUTURE_MARK_PRICE_KLINES:               {CATEGORY_FUTURES, "/fapi/v1/markPriceKlines", 1},
	FUTURE_PREMIUM_INDEX:                   {CATEGORY_FUTURES, "/fapi/v1/premiumIndex", 1},
	FUTURE_FUNDING_RATE:                    {CATEGORY_FUTURES, "/fapi/v1/fundingRate", 1},
	FUTURE_TICKER_24HR:                     {CATEGORY_FUTURES, "/fapi/v1/ticker/24hr", 40},
	FUTURE_TICKER_PRICE:                    {CATEGORY_FUTURES, "/fapi/v1/ticker/price", 2},
	FUTURE_BOOK_TICKER:                     {CATEGORY_FUTURES, "/fapi/v1/ticker/bookTicker", 2},
	FUTURE_ORDER:                           {CATEGORY_FUTURES, "/fapi/v1/order", 1},
	FUTURE_ALL_FORCE_ORDERS:                {CATEGORY_FUTURES, "/fapi/v1/forceOrders", 20},
	FUTURE_ALL_OPEN_ORDERS:                 {CATEGORY_FUTURES, "/fapi/v1/allOpenOrders", 40},
	FUTURE_ALL_ORDERS:                      {CATEGORY_FUTURES, "/fapi/v1/allOrders", 5},
	FUTURE_OPEN_ORDERS:                     {CATEGORY_FUTURES, "/fapi/v1/openOrders", 1},
	FUTURE_USER_TRADES:                     {CATEGORY_FUTURES, "/fapi/v1/userTrades", 5},
	FUTURE_POSITION_SIDE:                   {CATEGORY_FUTURES, "/fapi/v1/positionSide/dual", 1},
	FUTURE_POSITION_RISK:                   {CATEGORY_FUTURES, "/fapi/v2/positionRisk", 5},
	FUTURE_BALANCE:                         {CATEGORY_FUTURES, "/fapi/v2/balance", 5},
	FUTURE_ACCOUNT:                         {CATEGORY_FUTURES, "/fapi/v2/account", 5},
	FUTURE_LEVERAGE:                        {CATEGORY_FUTURES, "/fapi/v1/leverage", 1},
	FUTURE_MARGIN_TYPE:                     {CATEGORY_FUTURES, "/fapi/v1/marginType", 1},
	FUTURE_POSITION_MARGIN:                 {CATEGORY_FUTURES, "/fapi/v1/positionMargin", 1},
	FUTURE_INCOME:                          {CATEGORY_FUTURES, "/fapi/v1/income", 30},
	FUTURE_OPEN_INTEREST:                   {CATEGORY_FUTURES, "/fapi/v1/openInterest", 1},
	FUTURE_OPEN_INTEREST_HIST:              {CATEGORY_FUTURES, "/futures/data/openInterestHist", 1},
	FUTURE_TOP_LONG_SHORT_ACCOUNT_RATIO:    {CATEGORY_FUTURES, "/futures/data/topLongShortAccountRatio", 1},
	FUTURE_TOP_LONG_SHORT_POSITION_RATIO:   {CATEGORY_FUTURES, "/futures/data/topLongShortPositionRatio", 1},
	FUTURE_GLOBAL_LONG_SHORT_ACCOUNT_RATIO: {CATEGORY_FUTURES, "/futures/data/globalLongShortAccountRatio", 1},
	FUTURE_TAKER_LONG_SHORT_RATIO:          {CATEGORY_FUTURES, "/futures/data/takerlongshortRatio", 1},
	FUTURE_LVT_KLINES:                      {CATEGORY_FUTURES, "/fapi/v1/lvtKlines", 1},
	FUTURE_INDEX_INFO:                      {CATEGORY_FUTURES, "/fapi/v1/indexInfo", 1},
	FUTURE_USER_DATA_STREAM:                {CATEGORY_FUTURES, "/fapi/v1/listenKey", 1},

	SAVINGS_ALL_COINS:             {CATEGORY_SAVINGS, "/sapi/v1/capital/config/getall", 10},
	SAVINGS_ASSET_DETAIL:          {CATEGORY_SAVINGS, "/sapi/v1/asset/assetDetail", 1},
	SAVINGS_DEPOSIT_ADDRESS:       {CATEGORY_SAVINGS, "/sapi/v1/capital/deposit/address", 10},
	SAVINGS_SPOT_FUTURES_TRANSFER: {CATEGORY_SAVINGS, "/sapi/v1/futures/transfer", 1},

	ACCOUNT_API_RESTRICTIONS: {CATEGORY_ACCOUNT_GENERAL, "/sapi/v1/account/apiRestrictions", 1},
}

func (e Endpoint) Category() EndpointCategory {
	return endpoints[e].category
}

func (e Endpoint) Path() string {
	return endpoints[e].path
}

func (e Endpoint) String() string {
	if meta, ok := endpoints[e]; ok {
		return meta.category.String() + meta.path
	}
	return fmt.Sprintf("Endpoint(%d)", int(e))
}

// IsOrder reports whether a POST to the endpoint places orders and counts
// against the unfilled order limits. The test order endpoint does not.
func (e Endpoint) IsOrder() bool {
	switch e {
	case SPOT_ORDER, SPOT_OCO, SPOT_ORDER_LIST:
		return true
	default:
		return false
	}
}

func isOrderPlacement(method string, endpoint Endpoint) bool {
	return method == http.MethodPost && endpoint.IsOrder()
}
