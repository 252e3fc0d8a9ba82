// Package factory holds generic registries used to build pluggable modules
// (metrics sinks, forecasters) from their type name and a raw configuration
// map decoded with json tags.
package factory
