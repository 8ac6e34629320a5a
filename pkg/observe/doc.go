// Package observe turns weft runtime events into logs, Prometheus metrics and
// OpenTelemetry spans. Each observer is installed with weft.WithObserver:
//
//	rt := weft.NewRuntime(h,
//		weft.WithObserver(observe.NewLogObserver(logger)),
//		weft.WithObserver(observe.NewMetrics(observe.WithNamespace("app"))),
//		weft.WithObserver(observe.NewTracer()),
//	)
//
// Observers run synchronously on the loop goroutine, so they must not block.
package observe
