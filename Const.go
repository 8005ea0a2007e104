package goghostex

import "time"

const (
	GO_BIRTHDAY = "2006-01-02 15:04:05"
)

// exchanges const
const (
	BINANCE = "binance"
)

// rate limit types reported by the exchange info endpoints
const (
	RATE_LIMIT_REQUEST_WEIGHT = "REQUEST_WEIGHT"
	RATE_LIMIT_ORDERS         = "ORDERS"
	RATE_LIMIT_RAW_REQUESTS   = "RAW_REQUESTS"
)

type IntervalUnit string

const (
	INTERVAL_SECOND IntervalUnit = "SECOND"
	INTERVAL_MINUTE IntervalUnit = "MINUTE"
	INTERVAL_DAY    IntervalUnit = "DAY"
)

var intervalUnitLetter = map[IntervalUnit]string{
	INTERVAL_SECOND: "s",
	INTERVAL_MINUTE: "m",
	INTERVAL_DAY:    "d",
}

var intervalUnitDuration = map[IntervalUnit]time.Duration{
	INTERVAL_SECOND: time.Second,
	INTERVAL_MINUTE: time.Minute,
	INTERVAL_DAY:    24 * time.Hour,
}

// default values of APIConfig
const (
	DEFAULT_RECV_WINDOW_MS   = 5000
	DEFAULT_HTTP_TIMEOUT_SEC = 30
	DEFAULT_LOG_LEVEL        = "info"
	DEFAULT_USER_AGENT       = "goghostex/1.0"

	DEFAULT_WS_HANDSHAKE_TIMEOUT = 45 * time.Second
	DEFAULT_WS_WRITE_TIMEOUT     = 10 * time.Second
)
