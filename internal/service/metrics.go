package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "general_config_cache_lookups_total",
		Help: "Lookups of the general config cache by result (hit, miss).",
	}, []string{"result"})

	cacheWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "general_config_cache_writes_total",
		Help: "Writes to the general config cache by status (durable, memory_only).",
	}, []string{"status"})

	dbFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "general_config_db_fallbacks_total",
		Help: "Database reads after a cache miss by outcome (ok, error).",
	}, []string{"outcome"})
)
