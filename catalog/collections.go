package catalog

// Named metric collections. TargetMetricsEnhanced is the default input of
// the pipeline; the others slice the catalog per model grouping for
// operators who only train one detector.
var (
	TargetMetricsEnhanced     []string
	ResourceExhaustionMetrics []string
	StabilityMetrics          []string
	PerformanceMetrics        []string
	NetworkMetrics            []string
	ControlPlaneHealthMetrics []string
)

// buildCollections runs from the catalog init, after allMetrics is filled.
func buildCollections() {
	for _, group := range [][]*Metric{NodeMetrics, PodMetrics, KubernetesMetrics} {
		for _, m := range group {
			if m.Disabled() {
				continue
			}
			TargetMetricsEnhanced = append(TargetMetricsEnhanced, m.Name)
		}
	}

	ResourceExhaustionMetrics = Names(ByAnomalyCategory(AnomalyResource))
	StabilityMetrics = Names(ByAnomalyCategory(AnomalyStability))
	PerformanceMetrics = Names(ByAnomalyCategory(AnomalyPerformance))
	NetworkMetrics = Names(ByAnomalyCategory(AnomalyNetwork))
	ControlPlaneHealthMetrics = Names(ByAnomalyCategory(AnomalyControlPlane))
}
