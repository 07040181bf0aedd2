package metric

import (
	"bdayinvite/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

const operationsName = "operations_total"

// operations counts every birthday operation by name and result, where the
// result is "ok", a lowercased domain code or "error".
func operations(as *utils.AppState) {
	counter := register(prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      operationsName,
		Help:      "Birthday operations by outcome",
	}, []string{"op", "result"}), operationsName)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(counter, operationsName)
				return
			case op := <-as.MetricChans.Operation:
				counter.WithLabelValues(op.Name, op.Result).Inc()
			}
		}
	}()
}
