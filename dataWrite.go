package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	analyzer "selfheal.io/anomaly/analyzers"
	"selfheal.io/anomaly/catalog"
)

// This file contains the results sink: anomaly scores, per-model anomaly
// rates and threshold alerts written to InfluxDB as line protocol.

// ScoredPoint is one timestamped anomaly score of one model.
type ScoredPoint struct {
	Model     string
	Timestamp time.Time
	Score     float64
	Anomaly   bool
}

// InfluxWrite pushes the pipeline results through the non-blocking write
// API; write errors are drained and logged rather than failing the run,
// the artifacts on disk are the primary output.
func InfluxWrite(cfg *InfluxConfig, scores []ScoredPoint, rates map[catalog.AnomalyCategory]float64, alerts []analyzer.Alert) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range writeAPI.Errors() {
			glog.Errorf("influx write: %v", err)
		}
	}()

	for _, p := range scores {
		writeAPI.WriteRecord(scoreLine(p))
	}
	for cat, rate := range rates {
		writeAPI.WriteRecord(fmt.Sprintf(
			"anomaly_rate,model=%s rate=%f %d",
			escapeTag(cat.String()), rate, time.Now().UnixNano(),
		))
	}
	for _, a := range alerts {
		writeAPI.WriteRecord(alertLine(a))
	}

	writeAPI.Flush()
	// Close shuts the error channel, letting the drain goroutine exit.
	client.Close()
	wg.Wait()
}

func scoreLine(p ScoredPoint) string {
	anomaly := 0
	if p.Anomaly {
		anomaly = 1
	}
	return fmt.Sprintf(
		"anomaly_score,model=%s score=%f,anomaly=%di %d",
		escapeTag(p.Model), p.Score, anomaly, p.Timestamp.UnixNano(),
	)
}

func alertLine(a analyzer.Alert) string {
	return fmt.Sprintf(
		"anomaly_alert,metric=%s,level=%s value=%f,threshold=%f %d",
		escapeTag(a.Metric), a.Level, a.Value, a.Threshold, a.Timestamp.UnixNano(),
	)
}

// escapeTag escapes the line-protocol tag specials.
func escapeTag(s string) string {
	r := strings.NewReplacer(",", `\,`, " ", `\ `, "=", `\=`)
	return r.Replace(s)
}
