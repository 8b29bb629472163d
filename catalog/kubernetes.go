package catalog

// KubernetesMetrics are the kube-state-metrics-backed stability signals:
// restarts, crash loops, scheduling backlog and deployment health.
var KubernetesMetrics = []*Metric{
	{
		Name:       "container_restart_rate_1h",
		Query:      `sum by(namespace, pod) (increase(kube_pod_container_status_restarts_total{` + NSSlot + `}[1h]))`,
		Category:   CategoryStability,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Container restarts in the last hour.",
		Thresholds: NewThresholds(1, 3),
	},
	{
		Name:       "pod_crash_loop_backoff",
		Query:      `sum(kube_pod_container_status_waiting_reason{` + NSSlot + `reason="CrashLoopBackOff"})`,
		Category:   CategoryStability,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Containers sitting in CrashLoopBackOff.",
		Thresholds: NewThresholds(1, 3),
	},
	{
		Name:       "pod_oom_killed",
		Query:      `sum(kube_pod_container_status_last_terminated_reason{` + NSSlot + `reason="OOMKilled"})`,
		Category:   CategoryStability,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Containers whose last termination was an OOM kill.",
		Thresholds: NewThresholds(1, 3),
	},
	{
		Name:       "pod_image_pull_backoff",
		Query:      `sum(kube_pod_container_status_waiting_reason{` + NSSlot + `reason=~"ImagePullBackOff|ErrImagePull"})`,
		Category:   CategoryStability,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Containers failing to pull their image.",
		Thresholds: NewThresholds(1, 3),
	},
	{
		Name:       "pods_pending",
		Query:      `sum(kube_pod_status_phase{` + NSSlot + `phase="Pending"})`,
		Category:   CategoryStability,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Pods stuck in Pending, usually a scheduling problem.",
		Thresholds: NewThresholds(3, 10),
	},
	{
		Name:       "pods_not_ready",
		Query:      `sum(kube_pod_status_ready{` + NSSlot + `condition="false"})`,
		Category:   CategoryStability,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Pods failing their readiness checks.",
		Thresholds: NewThresholds(3, 10),
	},
	{
		Name:       "deployment_replicas_unavailable",
		Query:      `sum(kube_deployment_status_replicas_unavailable{` + NSSlot + `})`,
		Category:   CategoryStability,
		Anomaly:    AnomalyStability,
		Unit:       "count",
		Help:       "Replicas the deployments are short of.",
		Thresholds: NewThresholds(1, 5),
	},
}
