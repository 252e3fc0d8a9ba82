// Package infra holds the adapters behind the core interfaces: the MQTT
// alert publisher, the Prometheus and InfluxDB metrics sinks, the Sentry
// error monitor and the zerolog logger with its rotating file output.
// Nothing under core imports these packages; cmd and app wire them in.
package infra
