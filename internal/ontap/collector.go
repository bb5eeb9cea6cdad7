package ontap

import (
	"context"
	"log/slog"
	"time"

	"github.com/janskibh/netapp-exporter/internal/metrics"
)

// Recorder is the subset of the metric sink the collectors write into.
// *metrics.Sink satisfies it.
type Recorder interface {
	SetVolumeCapacity(volume string, c metrics.Capacity)
	SetVolumeCreateTime(volume string, unix float64)
	SetVolumeInfo(volume string, info metrics.VolumeInfo)
	SetTier(tier string, c metrics.Capacity, fullThresholdPercent, physicalUsed float64)
	SetNode(node string, n metrics.NodeStatus)
	FailedRequest(endpoint string)
}

// Collector sweeps one ONTAP resource kind: it names the list endpoint and
// turns each detail document into gauge updates.
type Collector interface {
	// Kind is a short name used in logs ("volumes").
	Kind() string
	// Path is the list endpoint relative to the target.
	Path() string
	// Record writes the gauges of one resource named name.
	Record(name string, detail any, rec Recorder, log *slog.Logger)
}

// Stats summarises one sweep.
type Stats struct {
	Kind       string
	ListFailed bool
	Listed     int
	Recorded   int
	Skipped    int
	Duration   time.Duration
}

// sweep lists the resources of col, follows each entry's self link and hands
// the detail document to col. A failed list fetch abandons the kind; a missing
// or foreign link or a failed detail fetch skips only that entry.
func sweep(ctx context.Context, client *Client, col Collector, log *slog.Logger) Stats {
	start := time.Now()
	st := Stats{Kind: col.Kind()}

	doc, ok := client.Fetch(ctx, client.target.URL(col.Path()))
	if !ok {
		log.Error("ontap: list fetch failed, skipping kind")
		st.ListFailed = true
		st.Duration = time.Since(start)
		return st
	}
	entries, ok := records(doc)
	if !ok {
		log.Warn("ontap: list response has no records")
		st.Duration = time.Since(start)
		return st
	}
	st.Listed = len(entries)

	for _, entry := range entries {
		name := text(entry, unknown, "name")
		href := selfLink(entry)
		if href == "" {
			log.Error("ontap: entry has no self link", "name", name)
			st.Skipped++
			continue
		}
		detailURL, err := client.URL(href)
		if err != nil {
			log.Error("ontap: unusable self link", "name", name, "err", err)
			st.Skipped++
			continue
		}
		detail, ok := client.Fetch(ctx, detailURL)
		if !ok {
			log.Error("ontap: detail fetch failed", "name", name)
			st.Skipped++
			continue
		}
		col.Record(name, detail, client.rec, log)
		st.Recorded++
	}
	st.Duration = time.Since(start)
	return st
}

// Collectors returns the volume, aggregate and node collectors.
func Collectors() []Collector {
	return []Collector{volumeCollector{}, aggregateCollector{}, nodeCollector{}}
}

// capacity reads used/size/available from a space object and derives the
// usage percentage.
func capacity(space any) metrics.Capacity {
	used := number(space, 0, "used")
	size := number(space, 0, "size")
	return metrics.Capacity{
		Used:         used,
		Size:         size,
		Available:    number(space, 0, "available"),
		UsagePercent: usagePercent(used, size),
	}
}
