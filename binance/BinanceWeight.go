package binance

import (
	"net/url"
	"strconv"
)

// WeightFunc returns the request weight of one call.
type WeightFunc func(endpoint Endpoint, query string) uint64

// EndpointWeight is the weight table of the exchange. Rules depending on the
// query come first, then the category default of the endpoint, then 1.
func EndpointWeight(endpoint Endpoint, query string) uint64 {
	switch endpoint {
	case SPOT_DEPTH, FUTURE_DEPTH:
		return depthWeight(query)
	case SPOT_TICKER_24HR, FUTURE_TICKER_24HR:
		return symbolWeight(query, 1, 40)
	case SPOT_TICKER_PRICE, SPOT_BOOK_TICKER, FUTURE_TICKER_PRICE, FUTURE_BOOK_TICKER:
		return symbolWeight(query, 1, 2)
	case SPOT_OPEN_ORDERS:
		return symbolWeight(query, 1, 3)
	}
	return categoryWeight(endpoint)
}

func categoryWeight(endpoint Endpoint) uint64 {
	var meta, ok = endpoints[endpoint]
	if !ok {
		return 1
	}
	switch meta.category {
	case CATEGORY_SPOT_V3, CATEGORY_FUTURES, CATEGORY_SAVINGS, CATEGORY_ACCOUNT_GENERAL:
		return meta.weight
	default:
		return 1
	}
}

func depthWeight(query string) uint64 {
	if query == "" {
		return 5
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return 5
	}
	if !values.Has("limit") {
		// the server default limit is 100
		return 1
	}
	limit, err := strconv.ParseUint(values.Get("limit"), 10, 64)
	if err != nil {
		return 5
	}
	switch {
	case limit <= 100:
		return 1
	case limit <= 500:
		return 5
	case limit <= 1000:
		return 10
	case limit <= 5000:
		return 50
	default:
		return 100
	}
}

// symbolWeight charges one symbol calls less than the all symbols variant.
func symbolWeight(query string, one, all uint64) uint64 {
	if query == "" {
		return all
	}
	values, err := url.ParseQuery(query)
	if err != nil || values.Get("symbol") == "" {
		return all
	}
	return one
}
