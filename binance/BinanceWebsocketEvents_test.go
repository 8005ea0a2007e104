package binance

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/strengthening/goghostex"
)

func TestDecodeFrame_NestedEnvelope(t *testing.T) {
	event, reply, err := decodeFrame([]byte(`{"stream":"outer","data":{"stream":"btcusdt@aggTrade","data":
		{"e":"aggTrade","E":123456789,"s":"BNBBTC","a":12345,"p":"0.001","q":"100","f":100,"l":105,"T":123456785,"m":true,"M":true}}}`))
	require.NoError(t, err)
	require.Nil(t, reply)

	trade, ok := event.(*AggTradeEvent)
	require.True(t, ok)
	assert.Equal(t, int64(12345), trade.AggTradeId)
	assert.Equal(t, int64(100), trade.FirstTradeId)
	assert.Equal(t, int64(105), trade.LastTradeId)
	assert.Equal(t, int64(123456785), trade.TradeTime)
	assert.Equal(t, EVENT_AGG_TRADE, trade.EventType())
}

func TestDecodeFrame_Shapes(t *testing.T) {
	event, _, err := decodeFrame([]byte(`{"u":400900217,"s":"BNBUSDT","b":"25.35190000","B":"31.21000000","a":"25.36520000","A":"40.66000000"}`))
	require.NoError(t, err)
	book, ok := event.(*BookTickerEvent)
	require.True(t, ok)
	assert.Equal(t, "25.35190000", book.BestBid)
	assert.Equal(t, "31.21000000", book.BestBidQty)

	event, _, err = decodeFrame([]byte(`{"lastUpdateId":160,"bids":[["0.0024","10"]],"asks":[["0.0026","100"],["0.0027","1"]]}`))
	require.NoError(t, err)
	partial, ok := event.(*PartialDepthEvent)
	require.True(t, ok)
	assert.Equal(t, int64(160), partial.LastUpdateId)
	assert.Len(t, partial.Asks, 2)
	assert.Equal(t, EVENT_PARTIAL_DEPTH, partial.EventType())

	event, _, err = decodeFrame([]byte(`{"e":"kline","E":1,"s":"BNBBTC","k":{"t":123400000,"T":123460000,"s":"BNBBTC","i":"1m","f":100,"L":200,"o":"0.0010","c":"0.0020","h":"0.0025","l":"0.0015","v":"1000","n":100,"x":false,"q":"1.0000","V":"500","Q":"0.500","B":"123456"}}`))
	require.NoError(t, err)
	kline, ok := event.(*KlineEvent)
	require.True(t, ok)
	assert.Equal(t, "1m", kline.Kline.Interval)
	assert.Equal(t, int64(200), kline.Kline.LastTradeId)
	assert.Equal(t, "0.0015", kline.Kline.Low)
	assert.Equal(t, "500", kline.Kline.TakerBuyBaseVolume)

	event, _, err = decodeFrame([]byte(`{"e":"4hTicker","E":1,"s":"BNBBTC","p":"0.0015","P":"250.00","o":"0.0010","h":"0.0025","l":"0.0010","c":"0.0025","w":"0.0018","v":"10000","q":"18","O":0,"C":1,"F":0,"L":18150,"n":18151}`))
	require.NoError(t, err)
	window, ok := event.(*WindowTickerEvent)
	require.True(t, ok)
	assert.Equal(t, EVENT_WINDOW_TICKER_4H, window.EventType())
}

func TestDecodeFrame_ExecutionReport(t *testing.T) {
	event, _, err := decodeFrame([]byte(`{"e":"executionReport","E":1499405658658,"s":"ETHBTC","c":"mUvoqJxFIILMdfAW5iGSOW","S":"BUY","o":"LIMIT","f":"GTC",
		"q":"1.00000000","p":"0.10264410","P":"0.00000000","F":"0.00000000","g":-1,"C":"","x":"NEW","X":"NEW","r":"NONE","i":4293153,
		"l":"0.00000000","z":"0.00000000","L":"0.00000000","n":"0","N":null,"T":1499405658657,"t":-1,"v":3,"I":8641984,"w":true,
		"m":false,"M":false,"O":1499405658657,"Z":"0.00000000","Y":"0.00000000","Q":"0.00000000","W":1499405658657,"V":"NONE"}`))
	require.NoError(t, err)
	report, ok := event.(*ExecutionReportEvent)
	require.True(t, ok)
	assert.Equal(t, "ETHBTC", report.Symbol)
	assert.Equal(t, "BUY", report.Side)
	assert.Equal(t, "mUvoqJxFIILMdfAW5iGSOW", report.ClientOrderId)
	assert.Equal(t, int64(4293153), report.OrderId)
	assert.Equal(t, int64(-1), report.TradeId)
	assert.Equal(t, int64(1499405658657), report.TransactionTime)
	assert.Equal(t, "NEW", report.OrderStatus)
	assert.Equal(t, "NONE", report.SelfTradePreventionMode)
	assert.True(t, report.IsOnBook)
	assert.False(t, report.UsedSor)
}

func TestDecodeFrame_ExecutionReportSor(t *testing.T) {
	event, _, err := decodeFrame([]byte(`{"e":"executionReport","E":1689149646176,"s":"BTCUSDT","c":"sor-fill-1","S":"BUY","o":"LIMIT","f":"GTC",
		"q":"0.10000000","p":"30000.00000000","P":"0.00000000","F":"0.00000000","g":-1,"C":"","x":"TRADE","X":"FILLED","r":"NONE","i":12,
		"l":"0.10000000","z":"0.10000000","L":"29999.00000000","n":"0","N":"BTC","T":1689149646175,"t":7,"b":"ONE_PARTY_TRADE_REPORT",
		"v":0,"a":9,"k":"SOR","uS":true,"I":25,"w":false,"m":false,"M":true,"O":1689149646174,"Z":"2999.90000000",
		"Y":"2999.90000000","Q":"0.00000000","W":1689149646174,"V":"EXPIRE_TAKER","A":"0.00000000","B":"0.00000000"}`))
	require.NoError(t, err)
	report, ok := event.(*ExecutionReportEvent)
	require.True(t, ok)
	assert.Equal(t, int64(9), report.AllocId)
	assert.Equal(t, "ONE_PARTY_TRADE_REPORT", report.MatchType)
	assert.Equal(t, "SOR", report.WorkingFloor)
	assert.True(t, report.UsedSor)
	assert.Equal(t, "0.00000000", report.PreventedQty)
	assert.Equal(t, "0.00000000", report.LastPreventedQty)
	assert.Equal(t, "FILLED", report.OrderStatus)
	assert.Equal(t, int64(7), report.TradeId)
}

func TestDecodeFrame_UserData(t *testing.T) {
	event, _, err := decodeFrame([]byte(`{"e":"outboundAccountPosition","E":1564034571105,"u":1564034571073,"B":[{"a":"ETH","f":"10000.000000","l":"0.000000"}]}`))
	require.NoError(t, err)
	position, ok := event.(*OutboundAccountPositionEvent)
	require.True(t, ok)
	assert.Equal(t, []AccountBalance{{Asset: "ETH", Free: "10000.000000", Locked: "0.000000"}}, position.Balances)

	event, _, err = decodeFrame([]byte(`{"e":"balanceUpdate","E":1573200697110,"a":"BTC","d":"100.00000000","T":1573200697068}`))
	require.NoError(t, err)
	balance, ok := event.(*BalanceUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, "100.00000000", balance.Delta)

	event, _, err = decodeFrame([]byte(`{"e":"ACCOUNT_UPDATE","E":1564745798939,"T":1564745798938,"a":{"m":"ORDER",
		"B":[{"a":"USDT","wb":"122624.12345678","cw":"100.12345678","bc":"50.12345678"}],
		"P":[{"s":"BTCUSDT","pa":"0","ep":"0.00000","cr":"200","up":"0","mt":"isolated","iw":"0.00000000","ps":"BOTH"}]}}`))
	require.NoError(t, err)
	account, ok := event.(*AccountUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, "ORDER", account.Data.Reason)
	assert.Equal(t, "BTCUSDT", account.Data.Positions[0].Symbol)
	assert.Equal(t, "50.12345678", account.Data.Balances[0].BalanceChange)
}

func TestDecodeFrame_Arrays(t *testing.T) {
	event, _, err := decodeFrame([]byte(`{"stream":"!ticker@arr","data":[
		{"e":"24hrTicker","E":1,"s":"BTCUSDT","c":"30000"},
		{"e":"24hrTicker","E":1,"s":"ETHUSDT","c":"2000"}]}`))
	require.NoError(t, err)
	tickers, ok := event.(DayTickerAllEvent)
	require.True(t, ok)
	require.Len(t, tickers, 2)
	assert.Equal(t, "ETHUSDT", tickers[1].Symbol)
	assert.Equal(t, EVENT_DAY_TICKER, tickers.EventType())

	event, _, err = decodeFrame([]byte(`[{"e":"24hrMiniTicker","E":1,"s":"BTCUSDT","c":"30000"}]`))
	require.NoError(t, err)
	_, ok = event.(MiniTickerAllEvent)
	assert.True(t, ok)

	event, _, err = decodeFrame([]byte(`[{"e":"1dTicker","E":1,"s":"BTCUSDT","c":"30000"}]`))
	require.NoError(t, err)
	assert.Equal(t, EVENT_WINDOW_TICKER_1D, event.EventType())
}

func TestDecodeFrame_Replies(t *testing.T) {
	event, reply, err := decodeFrame([]byte(`{"result":null,"id":3}`))
	require.NoError(t, err)
	assert.Nil(t, event)
	require.NotNil(t, reply)
	assert.Equal(t, uint64(3), reply.Id)
	assert.Nil(t, reply.Error)

	_, reply, err = decodeFrame([]byte(`{"error":{"code":2,"msg":"Invalid request: unknown variant"},"id":4}`))
	require.NoError(t, err)
	require.NotNil(t, reply.Error)
	assert.Equal(t, 2, reply.Error.Code)
}

func TestDecodeFrame_Malformed(t *testing.T) {
	frames := []string{
		``,
		`not json`,
		`[]`,
		`[{"e":"trade"}]`,
		`{"foo":"bar"}`,
		`{"e":"unknownEvent"}`,
		`{"e":42}`,
		`{"e":"trade","t":"not a number"}`,
		`{"e":"depthUpdate","b":[["1"]]}`,
		strings.Repeat(`{"data":`, MAX_ENVELOPE_DEPTH+2) + `{}` + strings.Repeat(`}`, MAX_ENVELOPE_DEPTH+2),
	}
	for _, frame := range frames {
		event, reply, err := decodeFrame([]byte(frame))
		var malformed *MalformedFrameError
		assert.True(t, errors.As(err, &malformed), frame)
		assert.Nil(t, event, frame)
		assert.Nil(t, reply, frame)
	}
}
