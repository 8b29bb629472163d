package catalog

// ControlPlaneMetrics need scrape access to the apiserver, etcd and the
// scheduler, which managed clusters often don't expose. The collection is
// kept separate so it can be switched off wholesale.
var ControlPlaneMetrics = []*Metric{
	{
		Name:       "apiserver_request_latency_p99",
		Query:      `histogram_quantile(0.99, sum by(le) (rate(apiserver_request_duration_seconds_bucket{verb!~"WATCH|CONNECT"}[5m])))`,
		Category:   CategoryControlPlane,
		Anomaly:    AnomalyControlPlane,
		Unit:       "seconds",
		Help:       "99th percentile apiserver request latency, watches excluded.",
		Thresholds: NewThresholds(1, 4),
	},
	{
		Name:       "etcd_leader_changes",
		Query:      `max(increase(etcd_server_leader_changes_seen_total[1h]))`,
		Category:   CategoryControlPlane,
		Anomaly:    AnomalyControlPlane,
		Unit:       "count",
		Help:       "etcd leader elections in the last hour.",
		Thresholds: NewThresholds(1, 3),
	},
	{
		Name:       "scheduler_pending_pods",
		Query:      `sum(scheduler_pending_pods)`,
		Category:   CategoryControlPlane,
		Anomaly:    AnomalyControlPlane,
		Unit:       "count",
		Help:       "Scheduling backlog across queues.",
		Thresholds: NewThresholds(10, 50),
	},
}
