package collector_test

import (
	"context"
	"testing"
	"time"

	"selfheal.io/anomaly/collector"
)

func TestNodeCollectRange(t *testing.T) {
	if testing.Short() {
		t.Skip("walks the window in real time.")
	}
	c := collector.NewNodeCollector("test-node")
	w := collector.Window{
		Start: time.Now(),
		End:   time.Now().Add(150 * time.Millisecond),
		Step:  50 * time.Millisecond,
	}
	names := []string{"node_memory_utilization", "node_cpu_utilization", "pod_cpu_utilization"}
	samples, err := c.CollectRange(context.Background(), names, w)
	if err != nil {
		t.Fatalf("CollectRange: %+v.", err)
	}
	if len(samples) == 0 {
		t.Fatal("no samples from the local node.")
	}
	for _, s := range samples {
		switch s.Metric {
		case "node_memory_utilization", "node_cpu_utilization":
		default:
			t.Fatalf("unrequested metric %q sampled.", s.Metric)
		}
		if s.Labels["instance"] != "test-node" {
			t.Fatalf("sample missing the instance label: %+v.", s)
		}
		if s.Value < 0 || s.Value > 100 {
			t.Fatalf("%s = %v, want a percentage.", s.Metric, s.Value)
		}
	}
}

func TestNodeCollectRangeEmptyWindow(t *testing.T) {
	c := collector.NewNodeCollector("test-node")
	w := collector.Window{Start: time.Now(), End: time.Now(), Step: time.Second}
	if _, err := c.CollectRange(context.Background(), nil, w); err == nil {
		t.Fatal("zero-span window should be rejected.")
	}
}

func TestNodeCollectRangeCancelled(t *testing.T) {
	c := collector.NewNodeCollector("test-node")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := collector.Window{
		Start: time.Now(),
		End:   time.Now().Add(time.Minute),
		Step:  time.Second,
	}
	if _, err := c.CollectRange(ctx, []string{"node_memory_utilization"}, w); err == nil {
		t.Fatal("cancelled context should surface an error.")
	}
}
