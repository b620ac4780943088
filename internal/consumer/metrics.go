package consumer

import "github.com/prometheus/client_golang/prometheus"

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stableops",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Kafka messages successfully handled and committed.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stableops",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Kafka messages skipped because they could not be decoded.",
	}, []string{"topic"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stableops",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Messages whose handler returned an error.",
	}, []string{"topic", "event_type"})
)

func init() {
	prometheus.MustRegister(processedCounter, decodeErrorCounter, handlerErrorCounter)
}

func recordProcessed(event Message) {
	processedCounter.WithLabelValues(event.Topic, event.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}

func recordHandlerError(event Message) {
	handlerErrorCounter.WithLabelValues(event.Topic, event.EventType).Inc()
}
