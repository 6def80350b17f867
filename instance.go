package statecore

import (
	"github.com/google/uuid"

	"github.com/nlowry/go-statecore/clock"
	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/internal/logging"
	"github.com/nlowry/go-statecore/internal/metrics"
	"github.com/nlowry/go-statecore/mqueue"
	"github.com/nlowry/go-statecore/stt"
)

// Instance bundles one MessageQueue and one StateTransitionTable under a
// single correlation ID, the unit cmd/statecore-demo runs one goroutine per
// (spec.md §5: single-threaded cooperative per instance, concurrency only
// across independently-owned instances).
type Instance struct {
	ID uuid.UUID

	Queue   *mqueue.Queue
	Table   *stt.Table
	Metrics *metrics.Metrics
	Log     *logging.Logger
}

// NewInstance builds an Instance with its own queue, table, counters and
// named logger, with metrics wired into both leaves.
func NewInstance(queueCapacityRecords, tableElements int, clk clock.Clock, log *logging.Logger) *Instance {
	id := uuid.New()
	m := metrics.New()

	q := mqueue.New(queueCapacityRecords, clk)
	q.SetMetrics(m)

	table := stt.New(tableElements)
	table.SetMetrics(m)

	return &Instance{
		ID:      id,
		Queue:   q,
		Table:   table,
		Metrics: m,
		Log:     log.Named(id.String()).With("instance", id.String()),
	}
}

// Dispatch resolves the transition function and next state registered for
// (state, iface, msg) against this instance's table. It is a thin read path
// over Table.Resolve; the top-level state-machine driver that would
// actually invoke the resolved function is out of scope here, same as it is
// for the table itself (spec.md §1).
func (inst *Instance) Dispatch(state, iface, msg identity.Identity) (fn, nextState identity.Identity, err error) {
	fn, nextState, ok := inst.Table.Resolve(state, iface, msg)
	if !ok {
		return identity.Nil, identity.Nil, Wrap("Dispatch", &Error{Code: CodeUnresolved, Msg: "no transition registered"})
	}
	return fn, nextState, nil
}

// Collector returns a prometheus.Collector for this instance's metrics,
// labeled with its correlation ID.
func (inst *Instance) Collector() *metrics.Collector {
	return metrics.NewCollector(inst.Metrics, inst.ID.String())
}
