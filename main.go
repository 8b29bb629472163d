package main

import (
	"flag"

	"github.com/golang/glog"

	"selfheal.io/anomaly/catalog"
)

var configPath = flag.String("config", "pipeline.yaml", "pipeline configuration file")

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		glog.Exitf("load config: %+v", err)
	}
	if cfg.CatalogOverrides != "" {
		if err := catalog.LoadOverrides(cfg.CatalogOverrides); err != nil {
			glog.Exitf("catalog overrides: %+v", err)
		}
		glog.Infof("applied catalog overrides from %s", cfg.CatalogOverrides)
	}
	glog.Infof("catalog fingerprint %016x, %d target metrics",
		catalog.Fingerprint(), len(catalog.TargetMetricsEnhanced))

	if err := Run(cfg); err != nil {
		glog.Exitf("pipeline: %+v", err)
	}
}
