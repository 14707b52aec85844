/*
Package monitoring provides Prometheus metrics for the shell.

# Overview

Each Metrics value owns its own prometheus.Registry, so several instances
(one per test, for example) never collide on registration. Recorder methods
are safe to call on a nil *Metrics, which lets domain code record
unconditionally.

# Metrics

  - shell_http_requests_total, shell_http_request_duration_seconds
  - shell_open_attempts_total{kind,result}, shell_open_duration_seconds{kind}
  - shell_redirects_total, shell_sessions_removed_total, shell_usage_errors_total
  - shell_remote_calls_total{method,code}
  - shell_feed_subscriptions
  - shell_views_registered

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
