// Package forecast defines the boundary with the external demand forecasting
// model. The model itself is opaque: the rest of the system only consumes the
// maximum predicted value over a horizon, turned into ForecastRow values for
// the capacity analyzer.
package forecast
