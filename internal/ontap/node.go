package ontap

import (
	"log/slog"
	"strings"

	"github.com/janskibh/netapp-exporter/internal/metrics"
)

type nodeCollector struct{}

func (nodeCollector) Kind() string { return "nodes" }
func (nodeCollector) Path() string { return "/api/cluster/nodes" }

// Record sets the node gauges. node_state is 1 only for a case-insensitive "up".
func (nodeCollector) Record(name string, detail any, rec Recorder, _ *slog.Logger) {
	rec.SetNode(name, metrics.NodeStatus{
		UptimeSeconds: number(detail, 0, "uptime"),
		Up:            strings.EqualFold(text(detail, "", "state"), "up"),
		CPUCount:      number(detail, 0, "controller", "cpu", "count"),
		MemoryBytes:   number(detail, 0, "controller", "memory_size"),
	})
}
