package binance

import (
	"bytes"
	"encoding/json"
	"fmt"

	. "github.com/strengthening/goghostex"
)

// Payload keys are single letters and encoding/json falls back to a case
// insensitive match, so every struct declares both cases of a letter when
// the exchange sends both.

const MAX_ENVELOPE_DEPTH = 8

// Event is one decoded stream payload.
type Event interface {
	EventType() string
}

type StreamHandler func(event Event)

const (
	EVENT_TRADE                     = "trade"
	EVENT_AGG_TRADE                 = "aggTrade"
	EVENT_KLINE                     = "kline"
	EVENT_DAY_TICKER                = "24hrTicker"
	EVENT_MINI_TICKER               = "24hrMiniTicker"
	EVENT_WINDOW_TICKER_1H          = "1hTicker"
	EVENT_WINDOW_TICKER_4H          = "4hTicker"
	EVENT_WINDOW_TICKER_1D          = "1dTicker"
	EVENT_BOOK_TICKER               = "bookTicker"
	EVENT_DEPTH_UPDATE              = "depthUpdate"
	EVENT_PARTIAL_DEPTH             = "partialDepth"
	EVENT_EXECUTION_REPORT          = "executionReport"
	EVENT_OUTBOUND_ACCOUNT_POSITION = "outboundAccountPosition"
	EVENT_BALANCE_UPDATE            = "balanceUpdate"
	EVENT_ACCOUNT_UPDATE            = "ACCOUNT_UPDATE"
)

// PriceLevel is one ["price","qty"] entry of a book.
type PriceLevel struct {
	Price float64
	Qty   float64
}

func (this *PriceLevel) UnmarshalJSON(data []byte) error {
	var level []string
	if err := json.Unmarshal(data, &level); err != nil {
		return err
	}
	if len(level) < 2 {
		return fmt.Errorf("price level needs 2 entries, got %d", len(level))
	}
	this.Price = ToFloat64(level[0])
	this.Qty = ToFloat64(level[1])
	return nil
}

type TradeEvent struct {
	Type         string `json:"e"`
	EventTime    int64  `json:"E"`
	Symbol       string `json:"s"`
	TradeId      int64  `json:"t"`
	Price        string `json:"p"`
	Qty          string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
	Ignore       bool   `json:"M"`
}

func (this *TradeEvent) EventType() string { return EVENT_TRADE }

type AggTradeEvent struct {
	Type         string `json:"e"`
	EventTime    int64  `json:"E"`
	Symbol       string `json:"s"`
	AggTradeId   int64  `json:"a"`
	Price        string `json:"p"`
	Qty          string `json:"q"`
	FirstTradeId int64  `json:"f"`
	LastTradeId  int64  `json:"l"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
	Ignore       bool   `json:"M"`
}

func (this *AggTradeEvent) EventType() string { return EVENT_AGG_TRADE }

type Kline struct {
	OpenTime            int64  `json:"t"`
	CloseTime           int64  `json:"T"`
	Symbol              string `json:"s"`
	Interval            string `json:"i"`
	FirstTradeId        int64  `json:"f"`
	LastTradeId         int64  `json:"L"`
	Open                string `json:"o"`
	Close               string `json:"c"`
	High                string `json:"h"`
	Low                 string `json:"l"`
	Volume              string `json:"v"`
	Trades              int64  `json:"n"`
	IsFinal             bool   `json:"x"`
	QuoteVolume         string `json:"q"`
	TakerBuyBaseVolume  string `json:"V"`
	TakerBuyQuoteVolume string `json:"Q"`
	Ignore              string `json:"B"`
}

type KlineEvent struct {
	Type      string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Kline     Kline  `json:"k"`
}

func (this *KlineEvent) EventType() string { return EVENT_KLINE }

type DayTickerEvent struct {
	Type               string `json:"e"`
	EventTime          int64  `json:"E"`
	Symbol             string `json:"s"`
	PriceChange        string `json:"p"`
	PriceChangePercent string `json:"P"`
	AveragePrice       string `json:"w"`
	PrevClose          string `json:"x"`
	Close              string `json:"c"`
	CloseQty           string `json:"Q"`
	BestBid            string `json:"b"`
	BestBidQty         string `json:"B"`
	BestAsk            string `json:"a"`
	BestAskQty         string `json:"A"`
	Open               string `json:"o"`
	High               string `json:"h"`
	Low                string `json:"l"`
	Volume             string `json:"v"`
	QuoteVolume        string `json:"q"`
	OpenTime           int64  `json:"O"`
	CloseTime          int64  `json:"C"`
	FirstTradeId       int64  `json:"F"`
	LastTradeId        int64  `json:"L"`
	Trades             int64  `json:"n"`
}

func (this *DayTickerEvent) EventType() string { return EVENT_DAY_TICKER }

// DayTickerAllEvent is the !ticker@arr payload.
type DayTickerAllEvent []DayTickerEvent

func (this DayTickerAllEvent) EventType() string { return EVENT_DAY_TICKER }

type WindowTickerEvent struct {
	Type               string `json:"e"`
	EventTime          int64  `json:"E"`
	Symbol             string `json:"s"`
	PriceChange        string `json:"p"`
	PriceChangePercent string `json:"P"`
	Open               string `json:"o"`
	High               string `json:"h"`
	Low                string `json:"l"`
	Close              string `json:"c"`
	AveragePrice       string `json:"w"`
	Volume             string `json:"v"`
	QuoteVolume        string `json:"q"`
	OpenTime           int64  `json:"O"`
	CloseTime          int64  `json:"C"`
	FirstTradeId       int64  `json:"F"`
	LastTradeId        int64  `json:"L"`
	Trades             int64  `json:"n"`
}

func (this *WindowTickerEvent) EventType() string { return this.Type }

type WindowTickerAllEvent []WindowTickerEvent

func (this WindowTickerAllEvent) EventType() string {
	if len(this) == 0 {
		return EVENT_WINDOW_TICKER_1H
	}
	return this[0].Type
}

type MiniTickerEvent struct {
	Type        string `json:"e"`
	EventTime   int64  `json:"E"`
	Symbol      string `json:"s"`
	Close       string `json:"c"`
	Open        string `json:"o"`
	High        string `json:"h"`
	Low         string `json:"l"`
	Volume      string `json:"v"`
	QuoteVolume string `json:"q"`
}

func (this *MiniTickerEvent) EventType() string { return EVENT_MINI_TICKER }

type MiniTickerAllEvent []MiniTickerEvent

func (this MiniTickerAllEvent) EventType() string { return EVENT_MINI_TICKER }

// BookTickerEvent carries e, E and T only on the futures stream.
type BookTickerEvent struct {
	Type            string `json:"e,omitempty"`
	EventTime       int64  `json:"E,omitempty"`
	TransactionTime int64  `json:"T,omitempty"`
	UpdateId        int64  `json:"u"`
	Symbol          string `json:"s"`
	BestBid         string `json:"b"`
	BestBidQty      string `json:"B"`
	BestAsk         string `json:"a"`
	BestAskQty      string `json:"A"`
}

func (this *BookTickerEvent) EventType() string { return EVENT_BOOK_TICKER }

type DepthUpdateEvent struct {
	Type              string       `json:"e"`
	EventTime         int64        `json:"E"`
	Symbol            string       `json:"s"`
	FirstUpdateId     int64        `json:"U"`
	FinalUpdateId     int64        `json:"u"`
	PrevFinalUpdateId int64        `json:"pu,omitempty"` // futures only
	Bids              []PriceLevel `json:"b"`
	Asks              []PriceLevel `json:"a"`
}

func (this *DepthUpdateEvent) EventType() string { return EVENT_DEPTH_UPDATE }

// PartialDepthEvent is the <symbol>@depth<levels> snapshot.
type PartialDepthEvent struct {
	LastUpdateId int64        `json:"lastUpdateId"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
}

func (this *PartialDepthEvent) EventType() string { return EVENT_PARTIAL_DEPTH }

type ExecutionReportEvent struct {
	Type                    string `json:"e"`
	EventTime               int64  `json:"E"`
	Symbol                  string `json:"s"`
	Side                    string `json:"S"`
	ClientOrderId           string `json:"c"`
	OrigClientOrderId       string `json:"C"`
	OrderType               string `json:"o"`
	CreateTime              int64  `json:"O"`
	TimeInForce             string `json:"f"`
	IcebergQty              string `json:"F"`
	OrderListId             int64  `json:"g"`
	Qty                     string `json:"q"`
	QuoteOrderQty           string `json:"Q"`
	Price                   string `json:"p"`
	StopPrice               string `json:"P"`
	ExecutionType           string `json:"x"`
	OrderStatus             string `json:"X"`
	RejectReason            string `json:"r"`
	OrderId                 int64  `json:"i"`
	Ignore                  int64  `json:"I"`
	LastExecutedQty         string `json:"l"`
	LastExecutedPrice       string `json:"L"`
	CumulativeFilledQty     string `json:"z"`
	CumulativeQuoteQty      string `json:"Z"`
	Commission              string `json:"n"`
	CommissionAsset         string `json:"N"`
	TransactionTime         int64  `json:"T"`
	TradeId                 int64  `json:"t"`
	IsOnBook                bool   `json:"w"`
	WorkingTime             int64  `json:"W"`
	IsMaker                 bool   `json:"m"`
	IgnoreM                 bool   `json:"M"`
	LastQuoteQty            string `json:"Y"`
	PreventedMatchId        int64  `json:"v"`
	SelfTradePreventionMode string `json:"V"`
	TradeGroupId            int64  `json:"u"`
	CounterOrderId          int64  `json:"U"`
	TrailingDelta           int64  `json:"d"`
	TrailingTime            int64  `json:"D"`
	StrategyId              int64  `json:"j"`
	StrategyType            int64  `json:"J"`
	PreventedQty            string `json:"A"`
	LastPreventedQty        string `json:"B"`

	// set on orders routed by the smart order router
	AllocId      int64  `json:"a"`
	MatchType    string `json:"b"`
	WorkingFloor string `json:"k"`
	UsedSor      bool   `json:"uS"`
}

func (this *ExecutionReportEvent) EventType() string { return EVENT_EXECUTION_REPORT }

type AccountBalance struct {
	Asset  string `json:"a"`
	Free   string `json:"f"`
	Locked string `json:"l"`
}

type OutboundAccountPositionEvent struct {
	Type           string           `json:"e"`
	EventTime      int64            `json:"E"`
	LastUpdateTime int64            `json:"u"`
	Balances       []AccountBalance `json:"B"`
}

func (this *OutboundAccountPositionEvent) EventType() string { return EVENT_OUTBOUND_ACCOUNT_POSITION }

type BalanceUpdateEvent struct {
	Type      string `json:"e"`
	EventTime int64  `json:"E"`
	Asset     string `json:"a"`
	Delta     string `json:"d"`
	ClearTime int64  `json:"T"`
}

func (this *BalanceUpdateEvent) EventType() string { return EVENT_BALANCE_UPDATE }

type FutureBalance struct {
	Asset              string `json:"a"`
	WalletBalance      string `json:"wb"`
	CrossWalletBalance string `json:"cw"`
	BalanceChange      string `json:"bc"`
}

type FuturePosition struct {
	Symbol              string `json:"s"`
	PositionAmount      string `json:"pa"`
	EntryPrice          string `json:"ep"`
	AccumulatedRealized string `json:"cr"`
	UnrealizedPnl       string `json:"up"`
	MarginType          string `json:"mt"`
	IsolatedWallet      string `json:"iw"`
	PositionSide        string `json:"ps"`
}

type AccountUpdateData struct {
	Reason    string           `json:"m"`
	Balances  []FutureBalance  `json:"B"`
	Positions []FuturePosition `json:"P"`
}

// AccountUpdateEvent is the futures user data ACCOUNT_UPDATE payload.
type AccountUpdateEvent struct {
	Type            string            `json:"e"`
	EventTime       int64             `json:"E"`
	TransactionTime int64             `json:"T"`
	Data            AccountUpdateData `json:"a"`
}

func (this *AccountUpdateEvent) EventType() string { return EVENT_ACCOUNT_UPDATE }

// streamReply is the answer to a SUBSCRIBE or UNSUBSCRIBE request.
type streamReply struct {
	Result json.RawMessage `json:"result"`
	Id     uint64          `json:"id"`
	Error  *struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error,omitempty"`
}

// decodeFrame turns one text frame into an event, or into the reply of a
// control request. Combined stream envelopes are unwrapped recursively.
func decodeFrame(frame []byte) (Event, *streamReply, error) {
	return decodePayload(frame, frame, 0)
}

func decodePayload(frame, payload []byte, depth int) (Event, *streamReply, error) {
	if depth > MAX_ENVELOPE_DEPTH {
		return nil, nil, &MalformedFrameError{Reason: "envelope nested too deep", Frame: frame}
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, nil, &MalformedFrameError{Reason: "empty payload", Frame: frame}
	}
	if payload[0] == '[' {
		event, err := decodeArray(frame, payload)
		return event, nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, nil, &MalformedFrameError{Reason: err.Error(), Frame: frame}
	}
	if data, ok := fields["data"]; ok {
		return decodePayload(frame, data, depth+1)
	}
	if _, ok := fields["id"]; ok {
		if _, hasResult := fields["result"]; hasResult || fields["error"] != nil {
			var reply streamReply
			if err := json.Unmarshal(payload, &reply); err != nil {
				return nil, nil, &MalformedFrameError{Reason: err.Error(), Frame: frame}
			}
			return nil, &reply, nil
		}
	}

	var event Event
	if raw, ok := fields["e"]; ok {
		var eventType string
		if err := json.Unmarshal(raw, &eventType); err != nil {
			return nil, nil, &MalformedFrameError{Reason: "event type is not a string", Frame: frame}
		}
		if event = newEvent(eventType); event == nil {
			return nil, nil, &MalformedFrameError{Reason: "unknown event type " + eventType, Frame: frame}
		}
	} else if _, ok := fields["lastUpdateId"]; ok {
		event = &PartialDepthEvent{}
	} else if hasKeys(fields, "u", "s", "b", "a") {
		event = &BookTickerEvent{}
	} else {
		return nil, nil, &MalformedFrameError{Reason: "unknown event shape", Frame: frame}
	}

	if err := json.Unmarshal(payload, event); err != nil {
		return nil, nil, &MalformedFrameError{Reason: err.Error(), Frame: frame}
	}
	return event, nil, nil
}

func newEvent(eventType string) Event {
	switch eventType {
	case EVENT_TRADE:
		return &TradeEvent{}
	case EVENT_AGG_TRADE:
		return &AggTradeEvent{}
	case EVENT_KLINE:
		return &KlineEvent{}
	case EVENT_DAY_TICKER:
		return &DayTickerEvent{}
	case EVENT_WINDOW_TICKER_1H, EVENT_WINDOW_TICKER_4H, EVENT_WINDOW_TICKER_1D:
		return &WindowTickerEvent{}
	case EVENT_MINI_TICKER:
		return &MiniTickerEvent{}
	case EVENT_BOOK_TICKER:
		return &BookTickerEvent{}
	case EVENT_DEPTH_UPDATE:
		return &DepthUpdateEvent{}
	case EVENT_EXECUTION_REPORT:
		return &ExecutionReportEvent{}
	case EVENT_OUTBOUND_ACCOUNT_POSITION:
		return &OutboundAccountPositionEvent{}
	case EVENT_BALANCE_UPDATE:
		return &BalanceUpdateEvent{}
	case EVENT_ACCOUNT_UPDATE:
		return &AccountUpdateEvent{}
	default:
		return nil
	}
}

// decodeArray handles the all market ticker streams, typed by the first element.
func decodeArray(frame, payload []byte) (Event, error) {
	var items []struct {
		Type      string `json:"e"`
		EventTime int64  `json:"E"`
	}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, &MalformedFrameError{Reason: err.Error(), Frame: frame}
	}
	if len(items) == 0 {
		return nil, &MalformedFrameError{Reason: "empty event array", Frame: frame}
	}

	var event Event
	var err error
	switch items[0].Type {
	case EVENT_DAY_TICKER:
		var tickers DayTickerAllEvent
		err = json.Unmarshal(payload, &tickers)
		event = tickers
	case EVENT_MINI_TICKER:
		var tickers MiniTickerAllEvent
		err = json.Unmarshal(payload, &tickers)
		event = tickers
	case EVENT_WINDOW_TICKER_1H, EVENT_WINDOW_TICKER_4H, EVENT_WINDOW_TICKER_1D:
		var tickers WindowTickerAllEvent
		err = json.Unmarshal(payload, &tickers)
		event = tickers
	default:
		return nil, &MalformedFrameError{Reason: "unknown array event type " + items[0].Type, Frame: frame}
	}
	if err != nil {
		return nil, &MalformedFrameError{Reason: err.Error(), Frame: frame}
	}
	return event, nil
}

func hasKeys(fields map[string]json.RawMessage, keys ...string) bool {
	for _, key := range keys {
		if _, ok := fields[key]; !ok {
			return false
		}
	}
	return true
}
