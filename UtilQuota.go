package goghostex

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

func ParseIntervalUnit(unit string) (IntervalUnit, error) {
	switch strings.ToUpper(strings.TrimSpace(unit)) {
	case string(INTERVAL_SECOND), "S":
		return INTERVAL_SECOND, nil
	case string(INTERVAL_MINUTE), "M":
		return INTERVAL_MINUTE, nil
	case string(INTERVAL_DAY), "D":
		return INTERVAL_DAY, nil
	default:
		return "", fmt.Errorf("unknown interval unit %q", unit)
	}
}

func (u IntervalUnit) Letter() string {
	return intervalUnitLetter[u]
}

func (u IntervalUnit) Duration() time.Duration {
	return intervalUnitDuration[u]
}

// Interval is a quota window, e.g. 1 MINUTE or 10 SECOND. Compared by value.
type Interval struct {
	Unit IntervalUnit
	Num  uint64
}

func NewInterval(unit IntervalUnit, num uint64) (Interval, error) {
	if _, ok := intervalUnitDuration[unit]; !ok {
		return Interval{}, fmt.Errorf("unknown interval unit %q", unit)
	}
	if num == 0 {
		return Interval{}, fmt.Errorf("interval num must be positive")
	}
	return Interval{Unit: unit, Num: num}, nil
}

// ParseIntervalSuffix parses the header suffix form, "1m", "10S", "1d".
func ParseIntervalSuffix(suffix string) (Interval, bool) {
	suffix = strings.TrimSpace(suffix)
	if len(suffix) < 2 {
		return Interval{}, false
	}
	var unit, err = ParseIntervalUnit(suffix[len(suffix)-1:])
	if err != nil {
		return Interval{}, false
	}
	num, err := strconv.ParseUint(suffix[:len(suffix)-1], 10, 64)
	if err != nil || num == 0 {
		return Interval{}, false
	}
	return Interval{Unit: unit, Num: num}, true
}

func (i Interval) String() string {
	return fmt.Sprintf("%d%s", i.Num, i.Unit.Letter())
}

func (i Interval) Duration() time.Duration {
	return time.Duration(i.Num) * i.Unit.Duration()
}

// QuotaBucket is the usage counter of one interval.
type QuotaBucket struct {
	mu      sync.Mutex
	ceiling uint64
	used    uint64
}

func (b *QuotaBucket) Snapshot() (ceiling, used uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ceiling, b.used
}

func (b *QuotaBucket) headroom(cost uint64) bool {
	return cost <= b.ceiling && b.used <= b.ceiling-cost
}

type QuotaUsage struct {
	Interval Interval
	Limit    uint64
	Used     uint64
}

// QuotaTable maps intervals to buckets. The set of intervals is fixed at
// construction, only the bucket counters change afterwards.
type QuotaTable struct {
	intervals []Interval // shortest window first, the lock order
	buckets   map[Interval]*QuotaBucket
}

func NewQuotaTable(ceilings map[Interval]uint64) *QuotaTable {
	var table = &QuotaTable{
		intervals: make([]Interval, 0, len(ceilings)),
		buckets:   make(map[Interval]*QuotaBucket, len(ceilings)),
	}
	for interval, ceiling := range ceilings {
		table.intervals = append(table.intervals, interval)
		table.buckets[interval] = &QuotaBucket{ceiling: ceiling}
	}
	sort.Slice(table.intervals, func(i, j int) bool {
		var a, b = table.intervals[i], table.intervals[j]
		if a.Duration() != b.Duration() {
			return a.Duration() < b.Duration()
		}
		return a.Unit < b.Unit
	})
	return table
}

func (t *QuotaTable) Len() int {
	return len(t.intervals)
}

func (t *QuotaTable) Intervals() []Interval {
	var intervals = make([]Interval, len(t.intervals))
	copy(intervals, t.intervals)
	return intervals
}

func (t *QuotaTable) Bucket(interval Interval) (*QuotaBucket, bool) {
	var bucket, ok = t.buckets[interval]
	return bucket, ok
}

// Acquire charges cost to every window or to none of them. All buckets are
// locked in table order so concurrent callers cannot both see the same
// headroom; the first window without headroom is reported.
func (t *QuotaTable) Acquire(cost uint64) error {
	for _, interval := range t.intervals {
		t.buckets[interval].mu.Lock()
	}
	defer func() {
		for _, interval := range t.intervals {
			t.buckets[interval].mu.Unlock()
		}
	}()

	for _, interval := range t.intervals {
		var bucket = t.buckets[interval]
		if !bucket.headroom(cost) {
			return &RateLimitExceededError{Interval: interval, Limit: bucket.ceiling}
		}
	}
	for _, interval := range t.intervals {
		t.buckets[interval].used += cost
	}
	return nil
}

// Release gives back cost charged by a successful Acquire whose call was never
// sent. Usage does not go below zero, a reconcile in between may already have
// replaced the charge.
func (t *QuotaTable) Release(cost uint64) {
	for _, interval := range t.intervals {
		var bucket = t.buckets[interval]
		bucket.mu.Lock()
		if bucket.used < cost {
			bucket.used = 0
		} else {
			bucket.used -= cost
		}
		bucket.mu.Unlock()
	}
}

// Reconcile overwrites the usage of one window with the value the server reported.
func (t *QuotaTable) Reconcile(interval Interval, used uint64) error {
	var bucket, ok = t.buckets[interval]
	if !ok {
		return ErrIntervalNotFound
	}
	bucket.mu.Lock()
	bucket.used = used
	bucket.mu.Unlock()
	return nil
}

func (t *QuotaTable) SetLimit(interval Interval, ceiling uint64) error {
	var bucket, ok = t.buckets[interval]
	if !ok {
		return ErrIntervalNotFound
	}
	bucket.mu.Lock()
	bucket.ceiling = ceiling
	bucket.mu.Unlock()
	return nil
}

func (t *QuotaTable) Used(interval Interval) (uint64, error) {
	var bucket, ok = t.buckets[interval]
	if !ok {
		return 0, ErrIntervalNotFound
	}
	var _, used = bucket.Snapshot()
	return used, nil
}

func (t *QuotaTable) Limit(interval Interval) (uint64, error) {
	var bucket, ok = t.buckets[interval]
	if !ok {
		return 0, ErrIntervalNotFound
	}
	var ceiling, _ = bucket.Snapshot()
	return ceiling, nil
}

func (t *QuotaTable) Usage() []QuotaUsage {
	var usage = make([]QuotaUsage, 0, len(t.intervals))
	for _, interval := range t.intervals {
		var ceiling, used = t.buckets[interval].Snapshot()
		usage = append(usage, QuotaUsage{Interval: interval, Limit: ceiling, Used: used})
	}
	return usage
}
