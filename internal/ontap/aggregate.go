package ontap

import "log/slog"

type aggregateCollector struct{}

func (aggregateCollector) Kind() string { return "aggregates" }
func (aggregateCollector) Path() string { return "/api/storage/aggregates" }

// Record sets the tier gauges from space.block_storage. Missing fields read as 0.
func (aggregateCollector) Record(name string, detail any, rec Recorder, _ *slog.Logger) {
	bs := object(detail, "space", "block_storage")
	rec.SetTier(name, capacity(bs),
		number(bs, 0, "full_threshold_percent"),
		number(bs, 0, "physical_used"),
	)
}
