package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	. "github.com/strengthening/goghostex"
)

const (
	USED_WEIGHT_HEADER_PREFIX = "x-mbx-used-weight-"
	ORDER_COUNT_HEADER_PREFIX = "x-mbx-order-count-"
)

type GovernorStats struct {
	Admitted uint64
	Rejected uint64
}

// quotaGovernor is the part shared by the request weight and the order
// count governors. The table is replaced once during bootstrap, before the
// governor is returned to callers.
type quotaGovernor struct {
	table        *QuotaTable
	limitType    string
	headerPrefix string
	logger       *zap.Logger

	admitted atomic.Uint64
	rejected atomic.Uint64
}

func newQuotaGovernor(limitType, headerPrefix string, logger *zap.Logger) quotaGovernor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return quotaGovernor{
		table:        NewQuotaTable(nil),
		limitType:    limitType,
		headerPrefix: headerPrefix,
		logger:       logger.With(zap.String("limit_type", limitType)),
	}
}

func (this *quotaGovernor) acquire(cost uint64) error {
	if err := this.table.Acquire(cost); err != nil {
		this.rejected.Inc()
		this.logger.Debug("call rejected", zap.Uint64("cost", cost), zap.Error(err))
		return err
	}
	this.admitted.Inc()
	return nil
}

// release undoes an acquire of cost whose call was never sent.
func (this *quotaGovernor) release(cost uint64) {
	this.table.Release(cost)
	this.admitted.Dec()
	this.logger.Debug("call released", zap.Uint64("cost", cost))
}

// Reconcile overwrites the usage of interval with the value the server reported.
func (this *quotaGovernor) Reconcile(interval Interval, used uint64) error {
	return this.table.Reconcile(interval, used)
}

// ReconcileHeaders applies every usage header of the governor's kind found
// in header. Header names are matched case-insensitively.
func (this *quotaGovernor) ReconcileHeaders(header http.Header) {
	for name, values := range header {
		var lower = strings.ToLower(name)
		if !strings.HasPrefix(lower, this.headerPrefix) || len(values) == 0 {
			continue
		}
		var interval, ok = ParseIntervalSuffix(lower[len(this.headerPrefix):])
		if !ok {
			this.logger.Debug("skip usage header", zap.String("header", name))
			continue
		}
		used, err := strconv.ParseUint(strings.TrimSpace(values[0]), 10, 64)
		if err != nil {
			this.logger.Debug("skip usage header", zap.String("header", name), zap.String("value", values[0]))
			continue
		}
		if err := this.table.Reconcile(interval, used); err != nil {
			this.logger.Debug("usage header without quota window",
				zap.String("header", name), zap.Stringer("interval", interval))
		}
	}
}

func (this *quotaGovernor) Used(interval Interval) (uint64, error) {
	return this.table.Used(interval)
}

func (this *quotaGovernor) Limit(interval Interval) (uint64, error) {
	return this.table.Limit(interval)
}

func (this *quotaGovernor) Intervals() []Interval {
	return this.table.Intervals()
}

func (this *quotaGovernor) Usage() []QuotaUsage {
	return this.table.Usage()
}

func (this *quotaGovernor) Stats() GovernorStats {
	return GovernorStats{Admitted: this.admitted.Load(), Rejected: this.rejected.Load()}
}

// install builds the quota table from the rate limits of the governor's
// type. With seedUsed the count field of each record becomes the usage.
func (this *quotaGovernor) install(limits []RateLimit, seedUsed bool) error {
	var ceilings = make(map[Interval]uint64)
	var used = make(map[Interval]uint64)
	for _, limit := range limits {
		if limit.RateLimitType != this.limitType {
			continue
		}
		unit, err := ParseIntervalUnit(limit.Interval)
		if err != nil {
			return errors.Wrapf(err, "rate limit %s", this.limitType)
		}
		interval, err := NewInterval(unit, limit.IntervalNum)
		if err != nil {
			return errors.Wrapf(err, "rate limit %s", this.limitType)
		}
		ceilings[interval] = limit.Limit
		if seedUsed {
			used[interval] = limit.Count
		}
	}
	if len(ceilings) == 0 {
		return errors.Errorf("no %s rate limits in bootstrap response", this.limitType)
	}

	var table = NewQuotaTable(ceilings)
	for interval, count := range used {
		if err := table.Reconcile(interval, count); err != nil {
			return err
		}
	}
	this.table = table
	for _, usage := range table.Usage() {
		this.logger.Info("quota window installed",
			zap.Stringer("interval", usage.Interval),
			zap.Uint64("limit", usage.Limit),
			zap.Uint64("used", usage.Used),
		)
	}
	return nil
}

// IpRateGovernor guards the request weight of one IP.
type IpRateGovernor struct {
	quotaGovernor
	weight WeightFunc
}

// NewIpRateGovernor reads the REQUEST_WEIGHT limits from exchangeInfo. The
// bootstrap call itself goes through the governor, its cost is applied from
// the response headers once the table exists.
func NewIpRateGovernor(ctx context.Context, config *APIConfig) (*IpRateGovernor, error) {
	var client = New(config)
	var governor = &IpRateGovernor{
		quotaGovernor: newQuotaGovernor(RATE_LIMIT_REQUEST_WEIGHT, USED_WEIGHT_HEADER_PREFIX, config.Logger),
		weight:        EndpointWeight,
	}
	client.IpLimiter = governor

	resp, err := client.doRequest(ctx, http.MethodGet, SPOT_EXCHANGE_INFO, nil, false)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap request weight limits")
	}
	var info ExchangeInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, errors.Wrap(err, "bootstrap request weight limits")
	}
	if err := governor.install(info.RateLimits, false); err != nil {
		return nil, errors.Wrap(err, "bootstrap request weight limits")
	}
	governor.ReconcileHeaders(resp.Header)
	return governor, nil
}

func (this *IpRateGovernor) Acquire(endpoint Endpoint, query string) error {
	return this.acquire(this.weight(endpoint, query))
}

// OrderRateGovernor guards the unfilled order count of one account.
type OrderRateGovernor struct {
	quotaGovernor
}

// NewOrderRateGovernor reads the ORDERS limits and current counts of the
// account. ip, when not nil, is charged for the bootstrap call.
func NewOrderRateGovernor(ctx context.Context, config *APIConfig, ip *IpRateGovernor) (*OrderRateGovernor, error) {
	var client = New(config)
	var governor = &OrderRateGovernor{
		quotaGovernor: newQuotaGovernor(RATE_LIMIT_ORDERS, ORDER_COUNT_HEADER_PREFIX, config.Logger),
	}
	client.IpLimiter = ip
	client.OrderLimiter = governor

	resp, err := client.doRequest(ctx, http.MethodGet, SPOT_RATE_LIMIT_ORDER, nil, true)
	if err != nil {
		return nil, errors.Wrap(err, "bootstrap order count limits")
	}
	var limits []RateLimit
	if err := json.Unmarshal(resp.Body, &limits); err != nil {
		return nil, errors.Wrap(err, "bootstrap order count limits")
	}
	if err := governor.install(limits, true); err != nil {
		return nil, errors.Wrap(err, "bootstrap order count limits")
	}
	governor.ReconcileHeaders(resp.Header)
	return governor, nil
}

func (this *OrderRateGovernor) Acquire() error {
	return this.acquire(1)
}
