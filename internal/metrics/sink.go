package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Capacity is a used/size/available triple with its derived usage percentage.
type Capacity struct {
	Used         float64
	Size         float64
	Available    float64
	UsagePercent float64
}

// VolumeInfo holds the descriptive labels of the volume_info series.
type VolumeInfo struct {
	Style          string
	Type           string
	SnapshotPolicy string
	SVM            string
}

// NodeStatus holds the per-node gauges.
type NodeStatus struct {
	UptimeSeconds float64
	Up            bool
	CPUCount      float64
	MemoryBytes   float64
}

// Sink owns the process-wide registry that collectors write into and the
// scrape handler renders. Create it once per process: gauges are never reset,
// so a series whose resource disappeared upstream keeps its last value until
// the process restarts.
//
// All methods are safe for concurrent use.
type Sink struct {
	registry *prometheus.Registry

	volumeUsed         *prometheus.GaugeVec
	volumeSize         *prometheus.GaugeVec
	volumeAvailable    *prometheus.GaugeVec
	volumeUsagePercent *prometheus.GaugeVec
	volumeInfo         *prometheus.GaugeVec
	volumeCreateTime   *prometheus.GaugeVec

	tierUsed          *prometheus.GaugeVec
	tierSize          *prometheus.GaugeVec
	tierAvailable     *prometheus.GaugeVec
	tierUsagePercent  *prometheus.GaugeVec
	tierFullThreshold *prometheus.GaugeVec
	tierPhysicalUsed  *prometheus.GaugeVec

	nodeUptime     *prometheus.GaugeVec
	nodeState      *prometheus.GaugeVec
	nodeCPUCount   *prometheus.GaugeVec
	nodeMemorySize *prometheus.GaugeVec

	failedRequests *prometheus.CounterVec
}

// NewSink builds the metric families under the given namespace (e.g. "netapp")
// and registers them on a private registry.
func NewSink(namespace string) *Sink {
	volumeLabels := []string{"volume"}
	tierLabels := []string{"tier"}
	nodeLabels := []string{"node"}

	gauge := func(name, help string, labels []string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, labels)
	}

	s := &Sink{
		registry: prometheus.NewRegistry(),

		volumeUsed:         gauge("volume_used_bytes", "Used space of a volume in bytes.", volumeLabels),
		volumeSize:         gauge("volume_size_bytes", "Total size of a volume in bytes.", volumeLabels),
		volumeAvailable:    gauge("volume_available_bytes", "Available space of a volume in bytes.", volumeLabels),
		volumeUsagePercent: gauge("volume_usage_percent", "Used share of a volume in percent.", volumeLabels),
		volumeInfo: gauge("volume_info", "Descriptive volume attributes, always 1.",
			[]string{"volume", "style", "type", "snapshot_policy", "svm"}),
		volumeCreateTime: gauge("volume_create_time", "Volume creation time as a Unix timestamp.", volumeLabels),

		tierUsed:          gauge("tier_used_bytes", "Used space of an aggregate in bytes.", tierLabels),
		tierSize:          gauge("tier_size_bytes", "Total size of an aggregate in bytes.", tierLabels),
		tierAvailable:     gauge("tier_available_bytes", "Available space of an aggregate in bytes.", tierLabels),
		tierUsagePercent:  gauge("tier_usage_percent", "Used share of an aggregate in percent.", tierLabels),
		tierFullThreshold: gauge("tier_full_threshold_percent", "Full threshold of an aggregate in percent.", tierLabels),
		tierPhysicalUsed:  gauge("tier_physical_used_bytes", "Physically used space of an aggregate in bytes.", tierLabels),

		nodeUptime:     gauge("node_uptime_seconds", "Node uptime in seconds.", nodeLabels),
		nodeState:      gauge("node_state", "Node state (1 = up, 0 = anything else).", nodeLabels),
		nodeCPUCount:   gauge("node_cpu_count", "Number of CPU cores in the node controller.", nodeLabels),
		nodeMemorySize: gauge("node_memory_size_bytes", "Node controller memory size in bytes.", nodeLabels),

		failedRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_requests_total",
			Help:      "Upstream requests that failed (transport error, timeout, non-200 status or invalid JSON).",
		}, []string{"endpoint"}),
	}

	s.registry.MustRegister(
		s.volumeUsed, s.volumeSize, s.volumeAvailable, s.volumeUsagePercent, s.volumeInfo, s.volumeCreateTime,
		s.tierUsed, s.tierSize, s.tierAvailable, s.tierUsagePercent, s.tierFullThreshold, s.tierPhysicalUsed,
		s.nodeUptime, s.nodeState, s.nodeCPUCount, s.nodeMemorySize,
		s.failedRequests,
	)
	return s
}

// SetVolumeCapacity records the four space gauges of a volume.
func (s *Sink) SetVolumeCapacity(volume string, c Capacity) {
	s.volumeUsed.WithLabelValues(volume).Set(c.Used)
	s.volumeSize.WithLabelValues(volume).Set(c.Size)
	s.volumeAvailable.WithLabelValues(volume).Set(c.Available)
	s.volumeUsagePercent.WithLabelValues(volume).Set(c.UsagePercent)
}

// SetVolumeCreateTime records the creation timestamp (Unix seconds) of a volume.
func (s *Sink) SetVolumeCreateTime(volume string, unix float64) {
	s.volumeCreateTime.WithLabelValues(volume).Set(unix)
}

// SetVolumeInfo sets the volume_info series to 1.
func (s *Sink) SetVolumeInfo(volume string, info VolumeInfo) {
	s.volumeInfo.WithLabelValues(volume, info.Style, info.Type, info.SnapshotPolicy, info.SVM).Set(1)
}

// SetTier records the block storage gauges of an aggregate.
func (s *Sink) SetTier(tier string, c Capacity, fullThresholdPercent, physicalUsed float64) {
	s.tierUsed.WithLabelValues(tier).Set(c.Used)
	s.tierSize.WithLabelValues(tier).Set(c.Size)
	s.tierAvailable.WithLabelValues(tier).Set(c.Available)
	s.tierUsagePercent.WithLabelValues(tier).Set(c.UsagePercent)
	s.tierFullThreshold.WithLabelValues(tier).Set(fullThresholdPercent)
	s.tierPhysicalUsed.WithLabelValues(tier).Set(physicalUsed)
}

// SetNode records the health gauges of a cluster node.
func (s *Sink) SetNode(node string, n NodeStatus) {
	state := 0.0
	if n.Up {
		state = 1
	}
	s.nodeUptime.WithLabelValues(node).Set(n.UptimeSeconds)
	s.nodeState.WithLabelValues(node).Set(state)
	s.nodeCPUCount.WithLabelValues(node).Set(n.CPUCount)
	s.nodeMemorySize.WithLabelValues(node).Set(n.MemoryBytes)
}

// FailedRequest increments the failure counter for endpoint.
func (s *Sink) FailedRequest(endpoint string) {
	s.failedRequests.WithLabelValues(endpoint).Inc()
}

// Gather implements prometheus.Gatherer.
func (s *Sink) Gather() ([]*dto.MetricFamily, error) {
	return s.registry.Gather()
}
