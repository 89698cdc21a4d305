package scheduler

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// TraceRecord: 轨迹中的一条记录，Elapsed 为相对求解开始的时间
type TraceRecord[V any] struct {
	Elapsed time.Duration
	Value   V
}

// ElapsedSeconds 返回相对求解开始的秒数
func (r TraceRecord[V]) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Trace: 求解过程的轨迹，记录只追加不修改
type Trace[V any] struct {
	label   string
	records []TraceRecord[V]
}

func NewTrace[V any](label string) *Trace[V] {
	return &Trace[V]{label: label}
}

func (t *Trace[V]) Label() string {
	return t.label
}

// Add 追加一条记录
func (t *Trace[V]) Add(elapsed time.Duration, value V) {
	t.records = append(t.records, TraceRecord[V]{Elapsed: elapsed, Value: value})
}

func (t *Trace[V]) Len() int {
	return len(t.records)
}

func (t *Trace[V]) IsEmpty() bool {
	return len(t.records) == 0
}

// Records 返回全部记录，调用方不应修改返回的切片
func (t *Trace[V]) Records() []TraceRecord[V] {
	return t.records
}

// LastRecord 返回最近追加的记录，轨迹为空时返回 nil
func (t *Trace[V]) LastRecord() *TraceRecord[V] {
	if len(t.records) == 0 {
		return nil
	}
	return &t.records[len(t.records)-1]
}

// LastRecordAt 返回给定时刻之前（含）最后一条记录，不存在时返回 nil
func (t *Trace[V]) LastRecordAt(elapsed time.Duration) *TraceRecord[V] {
	var last *TraceRecord[V]
	for i := range t.records {
		record := &t.records[i]
		if record.Elapsed > elapsed {
			continue
		}
		if last == nil || last.Elapsed < record.Elapsed {
			last = record
		}
	}
	return last
}

// LastValueAt 返回给定时刻之前（含）最后一条记录的值
func (t *Trace[V]) LastValueAt(elapsed time.Duration) (V, bool) {
	record := t.LastRecordAt(elapsed)
	if record == nil {
		var zero V
		return zero, false
	}
	return record.Value, true
}

// IterationRecord: 迭代局部搜索单次迭代的轨迹值
// LastAccepted 是迭代起点的排班评估，Current 是扰动和局部搜索之后的评估
type IterationRecord struct {
	Iteration             int
	BestFound             roster.Evaluation
	LastAccepted          roster.Evaluation
	Current               roster.Evaluation
	DistanceLastToCurrent int
}
