package collector

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"
)

// NodeCollector samples the local machine instead of a metrics backend.
// It exists for air-gapped runs and for trying the pipeline without a
// cluster: the window is walked forward in real time, one tick per step,
// so collecting a long range takes that long. It covers the node-level
// subset of the catalog only.
type NodeCollector struct {
	hostname string

	lastDisk map[string]disk.IOCountersStat
	lastNet  []gnet.IOCountersStat
	lastTick time.Time
}

func NewNodeCollector(hostname string) *NodeCollector {
	return &NodeCollector{hostname: hostname}
}

// nodeSampled is the subset of catalog names this collector can produce.
var nodeSampled = map[string]struct{}{
	"node_cpu_utilization":    {},
	"node_cpu_iowait":         {},
	"node_load_per_cpu":       {},
	"node_memory_utilization": {},
	"node_memory_swap_usage":  {},
	"node_disk_iops":          {},
	"node_disk_throughput_mb": {},
	"node_network_errors":     {},
	"node_network_drops":      {},
}

// CollectRange ticks once per step until the window's span has elapsed.
// Names outside the sampled subset are skipped with a warning on the
// first tick.
func (n *NodeCollector) CollectRange(ctx context.Context, names []string, w Window) ([]Sample, error) {
	steps := int(w.End.Sub(w.Start) / w.Step)
	if steps <= 0 {
		return nil, errors.WithStack(
			errors.New("node collector needs a positive window."),
		)
	}

	wanted := map[string]struct{}{}
	for _, name := range names {
		if _, ok := nodeSampled[name]; !ok {
			glog.Warningf("node collector cannot sample %q, skipping", name)
			continue
		}
		wanted[name] = struct{}{}
	}

	// Prime the counters so the first tick has deltas.
	n.primeCounters(ctx)

	ticker := time.NewTicker(w.Step)
	defer ticker.Stop()

	var samples []Sample
	for i := 0; i < steps; i++ {
		select {
		case ts := <-ticker.C:
			got := n.sampleOnce(ctx, wanted, ts)
			samples = append(samples, got...)
		case <-ctx.Done():
			return samples, errors.WithStack(ctx.Err())
		}
	}
	return samples, nil
}

func (n *NodeCollector) primeCounters(ctx context.Context) {
	if counters, err := disk.IOCountersWithContext(ctx); err == nil {
		n.lastDisk = counters
	}
	if counters, err := gnet.IOCountersWithContext(ctx, false); err == nil {
		n.lastNet = counters
	}
	// First CPU percent call establishes the comparison point.
	cpu.PercentWithContext(ctx, 0, false)
	n.lastTick = time.Now()
}

func (n *NodeCollector) sampleOnce(ctx context.Context, wanted map[string]struct{}, ts time.Time) []Sample {
	labels := Labels{"instance": n.hostname}
	var out []Sample
	emit := func(name string, value float64) {
		if _, ok := wanted[name]; !ok {
			return
		}
		out = append(out, Sample{Metric: name, Timestamp: ts, Value: value, Labels: labels})
	}

	if busy, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(busy) == 1 {
		emit("node_cpu_utilization", busy[0])
	} else if err != nil {
		glog.Errorf("node cpu sample: %v", err)
	}

	if times, err := cpu.TimesWithContext(ctx, false); err == nil && len(times) == 1 {
		total := times[0].Total()
		if total > 0 {
			emit("node_cpu_iowait", 100*times[0].Iowait/total)
		}
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		if cores, err := cpu.CountsWithContext(ctx, true); err == nil && cores > 0 {
			emit("node_load_per_cpu", avg.Load5/float64(cores))
		}
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		emit("node_memory_utilization", vm.UsedPercent)
	}
	if swap, err := mem.SwapMemoryWithContext(ctx); err == nil {
		emit("node_memory_swap_usage", swap.UsedPercent)
	}

	elapsed := ts.Sub(n.lastTick).Seconds()
	if counters, err := disk.IOCountersWithContext(ctx); err == nil {
		if n.lastDisk != nil && elapsed > 0 {
			var ops, bytes float64
			for dev, cur := range counters {
				prev, ok := n.lastDisk[dev]
				if !ok {
					continue
				}
				ops += float64(cur.ReadCount - prev.ReadCount + cur.WriteCount - prev.WriteCount)
				bytes += float64(cur.ReadBytes - prev.ReadBytes + cur.WriteBytes - prev.WriteBytes)
			}
			emit("node_disk_iops", ops/elapsed)
			emit("node_disk_throughput_mb", bytes/elapsed/1024/1024)
		}
		n.lastDisk = counters
	}

	if counters, err := gnet.IOCountersWithContext(ctx, false); err == nil {
		if len(n.lastNet) == 1 && len(counters) == 1 && elapsed > 0 {
			cur, prev := counters[0], n.lastNet[0]
			errs := float64(cur.Errin - prev.Errin + cur.Errout - prev.Errout)
			drops := float64(cur.Dropin - prev.Dropin + cur.Dropout - prev.Dropout)
			emit("node_network_errors", errs/elapsed)
			emit("node_network_drops", drops/elapsed)
		}
		n.lastNet = counters
	}

	n.lastTick = ts
	return out
}
