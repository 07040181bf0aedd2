// The `metric` package owns every Prometheus collector. Each collector lives
// in its own goroutine, fed by the channels in utils.Metric or by a ticker,
// and unregisters itself on graceful shutdown.
package metric

import (
	"errors"
	"log/slog"
	"time"

	"bdayinvite/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bdayinvite"

// register tolerates a collector left behind by an earlier Init.
func register[T prometheus.Collector](collector T, name string) T {
	if err := prometheus.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		slog.Error("can't register metric", "name", name, "error", err)
		return collector
	}
	slog.Debug("metric registered", "name", name)
	return collector
}

func unregister(collector prometheus.Collector, name string) {
	switch prometheus.Unregister(collector) {
	case true:
		slog.Debug("metric unregistered", "name", name)
	case false:
		slog.Warn("metric not registered", "name", name)
	}
}

// channelGauge shows the last sample from ch and falls back to 0 when no
// sample arrived for clearInterval.
func channelGauge(as *utils.AppState, name, help string, ch <-chan float64, clearInterval time.Duration) {
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}), name)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(gauge, name)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

// tickerGauge samples every interval.
func tickerGauge(as *utils.AppState, name, help string, interval time.Duration, sample func() (float64, error)) {
	gauge := register(prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}), name)
	gauge.Set(0)

	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregister(gauge, name)
				return
			case <-ticker.C:
				value, err := sample()
				if err != nil {
					slog.Error("can't sample metric", "name", name, "error", err)
					continue
				}
				gauge.Set(value)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	tickerGauge(as,
		"database_empty_read_microsec",
		"The latency of an empty database read in microseconds",
		tickerInterval,
		func() (float64, error) {
			return databaseEmptyRead(as)
		},
	)
	channelGauge(as,
		"database_read_microsec",
		"The latency of a database read in microseconds",
		as.MetricChans.DatabaseRead,
		clearTickerInterval,
	)
	channelGauge(as,
		"database_write_microsec",
		"The latency of a database write in microseconds",
		as.MetricChans.DatabaseWrite,
		clearTickerInterval,
	)
	channelGauge(as,
		"discord_send_message_microsec",
		"The latency of a discord message send in microseconds",
		as.MetricChans.DiscordSendMessage,
		clearTickerInterval,
	)
	if as.DgSession != nil {
		tickerGauge(as,
			"discord_heartbeat_latency_microsec",
			"The latency of a discord heartbeat in microseconds",
			tickerInterval,
			func() (float64, error) {
				return float64(as.DgSession.HeartbeatLatency().Microseconds()), nil
			},
		)
	}
	operations(as)
}
