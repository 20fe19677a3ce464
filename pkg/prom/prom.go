package prom

import (
	"sync"

	xhttp "github.com/amulsh/nurture-gateway/pkg/http"
	"github.com/amulsh/nurture-gateway/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemNurture = "nurture"
)

const (
	MetricMessagesSentTotal    = "messages_sent_total"
	MetricSchedulerRunDuration = "scheduler_run_duration_seconds"
	MetricSchedulerLeadsDue    = "scheduler_leads_due"
	MetricImportRowsTotal      = "import_rows_total"
)

// Send outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeSimulated = "simulated"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogram = make(map[string]prometheus.Histogram)
var MetricCollectionGauge = make(map[string]prometheus.Gauge)

var defaultLabels prometheus.Labels

func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemNurture, MetricMessagesSentTotal, []string{"outcome"}))
	hasError(createCounterVec(SystemNurture, MetricImportRowsTotal, []string{"result"}))
	hasError(createHistogram(SystemNurture, MetricSchedulerRunDuration))
	hasError(createGauge(SystemNurture, MetricSchedulerLeadsDue))

	return err
}

func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogram(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogram[subsystem+name] = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	})
	return prometheus.Register(MetricCollectionHistogram[subsystem+name])
}

func createGauge(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionGauge[subsystem+name] = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(MetricCollectionGauge[subsystem+name])
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Inc()
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func AddHistogram(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogram[subsystem+name]; ok {
		v.Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram not found", "subsystem", subsystem, "name", name)
}

func SetGauge(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionGauge[subsystem+name]; ok {
		v.Set(number)
		return
	}
	logger.Warn("[metrics-server] gauge not found", "subsystem", subsystem, "name", name)
}

// AddMessageSent records one send attempt by outcome.
func AddMessageSent(outcome string) {
	IncCounterVec(SystemNurture, MetricMessagesSentTotal, outcome)
}

// AddImportRow records one processed import row by result.
func AddImportRow(result string) {
	IncCounterVec(SystemNurture, MetricImportRowsTotal, result)
}

// ObserveSchedulerRun records the wall-clock duration of one full pass.
func ObserveSchedulerRun(seconds float64) {
	AddHistogram(SystemNurture, MetricSchedulerRunDuration, seconds)
}

// SetLeadsDue records how many leads the last pass selected.
func SetLeadsDue(n int) {
	SetGauge(SystemNurture, MetricSchedulerLeadsDue, float64(n))
}
