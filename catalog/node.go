package catalog

// NodeMetrics are the node_exporter-backed signals: CPU, memory, disk and
// host network health. The per-CPU and per-device series are collapsed to
// one value per instance so the feature table stays dense.
var NodeMetrics = []*Metric{
	{
		Name:       "node_cpu_utilization",
		Query:      `100 * (1 - avg by(instance) (rate(node_cpu_seconds_total{mode="idle"}[5m])))`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "Busy CPU share of the node.",
		Thresholds: NewThresholds(70, 85),
	},
	{
		Name:       "node_cpu_saturation",
		Query:      `avg by(instance) (rate(node_pressure_cpu_waiting_seconds_total[5m]))`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyResource,
		Unit:       "ratio",
		Help:       "PSI share of wall time that runnable tasks spent waiting for a CPU.",
		Thresholds: NewThresholds(0.2, 0.5),
	},
	{
		Name:       "node_cpu_iowait",
		Query:      `100 * avg by(instance) (rate(node_cpu_seconds_total{mode="iowait"}[5m]))`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyPerformance,
		Unit:       "percent",
		Help:       "CPU time stalled on disk, a disk-bottleneck indicator.",
		Thresholds: NewThresholds(10, 25),
	},
	{
		Name:       "node_cpu_steal",
		Query:      `100 * avg by(instance) (rate(node_cpu_seconds_total{mode="steal"}[5m]))`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "CPU time stolen by the hypervisor, a noisy-neighbour signal.",
		Thresholds: NewThresholds(5, 15),
	},
	{
		Name:       "node_load_per_cpu",
		Query:      `node_load5 / count by(instance) (node_cpu_seconds_total{mode="idle"})`,
		Category:   CategoryCPU,
		Anomaly:    AnomalyResource,
		Unit:       "ratio",
		Help:       "Five minute load average normalized by CPU count.",
		Thresholds: NewThresholds(1.5, 3),
	},
	{
		Name:       "node_memory_utilization",
		Query:      `100 * (1 - node_memory_MemAvailable_bytes / node_memory_MemTotal_bytes)`,
		Category:   CategoryMemory,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "Memory in use, counting reclaimable caches as available.",
		Thresholds: NewThresholds(80, 90),
	},
	{
		Name:       "node_memory_pressure",
		Query:      `avg by(instance) (rate(node_pressure_memory_waiting_seconds_total[5m]))`,
		Category:   CategoryMemory,
		Anomaly:    AnomalyResource,
		Unit:       "ratio",
		Help:       "PSI share of wall time tasks stalled on memory reclaim.",
		Thresholds: NewThresholds(0.05, 0.25),
	},
	{
		Name:       "node_memory_swap_usage",
		Query:      `100 * (1 - node_memory_SwapFree_bytes / node_memory_SwapTotal_bytes)`,
		Category:   CategoryMemory,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "Swap in use. Swapping on a Kubernetes node is already a pressure signal.",
		Thresholds: NewThresholds(20, 50),
	},
	{
		Name:       "node_memory_oom_kills",
		Query:      `increase(node_vmstat_oom_kill[1h])`,
		Category:   CategoryMemory,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Kernel OOM kills in the last hour.",
		Thresholds: NewThresholds(1, 3),
	},
	{
		Name:       "node_disk_io_utilization",
		Query:      `100 * max by(instance) (rate(node_disk_io_time_seconds_total[5m]))`,
		Category:   CategoryDisk,
		Anomaly:    AnomalyPerformance,
		Unit:       "percent",
		Help:       "Share of time the busiest device spent doing I/O.",
		Thresholds: NewThresholds(60, 85),
	},
	{
		Name:       "node_disk_read_latency_ms",
		Query:      `1000 * max by(instance) (rate(node_disk_read_time_seconds_total[5m]) / rate(node_disk_reads_completed_total[5m]))`,
		Category:   CategoryDisk,
		Anomaly:    AnomalyPerformance,
		Unit:       "ms",
		Help:       "Mean read latency on the slowest device.",
		Thresholds: NewThresholds(20, 100),
	},
	{
		Name:       "node_disk_write_latency_ms",
		Query:      `1000 * max by(instance) (rate(node_disk_write_time_seconds_total[5m]) / rate(node_disk_writes_completed_total[5m]))`,
		Category:   CategoryDisk,
		Anomaly:    AnomalyPerformance,
		Unit:       "ms",
		Help:       "Mean write latency on the slowest device.",
		Thresholds: NewThresholds(20, 100),
	},
	{
		Name:     "node_disk_iops",
		Query:    `sum by(instance) (rate(node_disk_reads_completed_total[5m]) + rate(node_disk_writes_completed_total[5m]))`,
		Category: CategoryDisk,
		Anomaly:  AnomalyPerformance,
		Unit:     "ops/s",
		Help:     "Total I/O operations per second across devices.",
	},
	{
		Name:     "node_disk_throughput_mb",
		Query:    `sum by(instance) (rate(node_disk_read_bytes_total[5m]) + rate(node_disk_written_bytes_total[5m])) / 1024 / 1024`,
		Category: CategoryDisk,
		Anomaly:  AnomalyPerformance,
		Unit:     "MB/s",
		Help:     "Total disk bandwidth across devices.",
	},
	{
		Name:       "node_disk_await",
		Query:      `1000 * max by(instance) ((rate(node_disk_read_time_seconds_total[5m]) + rate(node_disk_write_time_seconds_total[5m])) / (rate(node_disk_reads_completed_total[5m]) + rate(node_disk_writes_completed_total[5m])))`,
		Category:   CategoryDisk,
		Anomaly:    AnomalyPerformance,
		Unit:       "ms",
		Help:       "Queue plus service time per I/O on the slowest device.",
		Thresholds: NewThresholds(10, 50),
	},
	{
		Name:       "node_inode_utilization",
		Query:      `100 * max by(instance) (1 - node_filesystem_files_free{fstype!~"tmpfs|overlay"} / node_filesystem_files{fstype!~"tmpfs|overlay"})`,
		Category:   CategoryDisk,
		Anomaly:    AnomalyResource,
		Unit:       "percent",
		Help:       "Inode usage of the fullest filesystem. Fills up long before bytes do.",
		Thresholds: NewThresholds(75, 90),
	},
	{
		Name:       "node_network_errors",
		Query:      `sum by(instance) (rate(node_network_receive_errs_total[5m]) + rate(node_network_transmit_errs_total[5m]))`,
		Category:   CategoryNetwork,
		Anomaly:    AnomalyNetwork,
		Unit:       "errors/s",
		Help:       "Interface receive plus transmit errors.",
		Thresholds: NewThresholds(1, 10),
	},
	{
		Name:       "node_network_drops",
		Query:      `sum by(instance) (rate(node_network_receive_drop_total[5m]) + rate(node_network_transmit_drop_total[5m]))`,
		Category:   CategoryNetwork,
		Anomaly:    AnomalyNetwork,
		Unit:       "packets/s",
		Help:       "Packets dropped at the interfaces.",
		Thresholds: NewThresholds(1, 10),
	},
	{
		Name:       "node_conntrack_utilization",
		Query:      `100 * node_nf_conntrack_entries / node_nf_conntrack_entries_limit`,
		Category:   CategoryNetwork,
		Anomaly:    AnomalyNetwork,
		Unit:       "percent",
		Help:       "Connection-tracking table fill level.",
		Thresholds: NewThresholds(70, 90),
	},
	{
		Name:       "node_tcp_retransmit_rate",
		Query:      `100 * rate(node_netstat_Tcp_RetransSegs[5m]) / rate(node_netstat_Tcp_OutSegs[5m])`,
		Category:   CategoryNetwork,
		Anomaly:    AnomalyNetwork,
		Unit:       "percent",
		Help:       "TCP segments retransmitted, a network-quality signal.",
		Thresholds: NewThresholds(2, 10),
	},
	{
		Name:       "node_socket_overflow",
		Query:      `rate(node_netstat_TcpExt_ListenOverflows[5m])`,
		Category:   CategoryNetwork,
		Anomaly:    AnomalyNetwork,
		Unit:       "events/s",
		Help:       "Listen queue overflows. Anything above zero means dropped connections.",
		Thresholds: NewThresholds(0.1, 1),
	},
}
