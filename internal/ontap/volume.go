package ontap

import (
	"log/slog"

	"github.com/janskibh/netapp-exporter/internal/metrics"
)

type volumeCollector struct{}

func (volumeCollector) Kind() string { return "volumes" }
func (volumeCollector) Path() string { return "/api/storage/volumes" }

// Record sets the space gauges when the detail has a non-empty space object,
// then always sets volume_create_time and volume_info.
func (volumeCollector) Record(name string, detail any, rec Recorder, log *slog.Logger) {
	if space := object(detail, "space"); len(space) > 0 {
		rec.SetVolumeCapacity(name, capacity(space))
	} else {
		log.Debug("ontap: volume has no space data", "volume", name)
	}

	rec.SetVolumeCreateTime(name, volumeCreateTime(name, detail, log))

	rec.SetVolumeInfo(name, metrics.VolumeInfo{
		Style:          text(detail, unknown, "style"),
		Type:           text(detail, unknown, "type"),
		SnapshotPolicy: text(detail, unknown, "snapshot_policy", "name"),
		SVM:            text(detail, unknown, "svm", "name"),
	})
}

// volumeCreateTime is 0 when create_time is absent or empty and 0 plus an
// error log when it does not parse.
func volumeCreateTime(name string, detail any, log *slog.Logger) float64 {
	raw, ok := lookup(detail, "create_time")
	if !ok {
		return 0
	}
	s, ok := raw.(string)
	if !ok {
		log.Error("ontap: volume create_time is not a string", "volume", name, "value", raw)
		return 0
	}
	if s == "" {
		return 0
	}
	ts, err := parseCreateTime(s)
	if err != nil {
		log.Error("ontap: cannot parse volume create_time", "volume", name, "err", err)
		return 0
	}
	return ts
}
