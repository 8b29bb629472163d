package catalog

// PodMetrics are the cAdvisor-backed per-workload signals. Queries carry
// the namespace slot so collection can be narrowed to one namespace.
var PodMetrics = []*Metric{
	{
		Name:       "pod_cpu_utilization",
		Query:      `100 * sum by(namespace, pod) (rate(container_cpu_usage_seconds_total{` + NSSlot + `container!=""}[5m])) / sum by(namespace, pod) (kube_pod_container_resource_limits{` + NSSlot + `resource="cpu"})`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "Pod CPU usage against its limit.",
		Thresholds: NewThresholds(70, 90),
	},
	{
		Name:       "pod_memory_utilization",
		Query:      `100 * sum by(namespace, pod) (container_memory_working_set_bytes{` + NSSlot + `container!=""}) / sum by(namespace, pod) (kube_pod_container_resource_limits{` + NSSlot + `resource="memory"})`,
		Category:   CategoryMemory,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "Pod working set against its memory limit.",
		Thresholds: NewThresholds(80, 95),
	},
	{
		Name:       "pod_cpu_throttled_percent",
		Query:      `100 * sum by(namespace, pod) (rate(container_cpu_cfs_throttled_periods_total{` + NSSlot + `container!=""}[5m])) / sum by(namespace, pod) (rate(container_cpu_cfs_periods_total{` + NSSlot + `container!=""}[5m]))`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyPerformance,
		Unit:       "percent",
		Help:       "CFS periods in which the pod was throttled.",
		Thresholds: NewThresholds(25, 50),
	},
	{
		Name:       "pod_cpu_request_utilization",
		Query:      `100 * sum by(namespace, pod) (rate(container_cpu_usage_seconds_total{` + NSSlot + `container!=""}[5m])) / sum by(namespace, pod) (kube_pod_container_resource_requests{` + NSSlot + `resource="cpu"})`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "Pod CPU usage against its request, the autoscaler's input.",
		Thresholds: NewThresholds(100, 200),
	},
	{
		Name:       "pod_memory_swap",
		Query:      `sum by(namespace, pod) (container_memory_swap{` + NSSlot + `container!=""}) / 1024 / 1024`,
		Category:   CategoryMemory,
		Anomaly:    AnomalyResource,
		Unit:       "MB",
		Help:       "Pod swap usage. Expected to stay at zero.",
		Thresholds: NewThresholds(1, 100),
	},
	{
		Name:       "pod_network_errors",
		Query:      `sum by(namespace, pod) (rate(container_network_receive_errors_total{` + NSSlot + `pod!=""}[5m]) + rate(container_network_transmit_errors_total{` + NSSlot + `pod!=""}[5m]))`,
		Category:   CategoryNetwork,
		Anomaly:    AnomalyNetwork,
		Unit:       "errors/s",
		Help:       "Per-pod interface errors.",
		Thresholds: NewThresholds(1, 10),
	},
	{
		Name:       "pod_network_dropped_packets",
		Query:      `sum by(namespace, pod) (rate(container_network_receive_packets_dropped_total{` + NSSlot + `pod!=""}[5m]) + rate(container_network_transmit_packets_dropped_total{` + NSSlot + `pod!=""}[5m]))`,
		Category:   CategoryNetwork,
		Anomaly:    AnomalyNetwork,
		Unit:       "packets/s",
		Help:       "Per-pod dropped packets.",
		Thresholds: NewThresholds(1, 10),
	},
}
