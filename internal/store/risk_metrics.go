package store

import "context"

// RecordRiskMetric appends one observability point for a risk-gate
// computation (exposure, basket totals, and the like) per §6.
func (s *Store) RecordRiskMetric(ctx context.Context, asset, metric string, value float64) error {
	return s.db.WithContext(ctx).Create(&RiskMetricRow{
		Timestamp: nowUTC(),
		Asset:     asset,
		Metric:    metric,
		Value:     value,
	}).Error
}

// RecordHealthCheck appends one component health observation (§6).
func (s *Store) RecordHealthCheck(ctx context.Context, component string, healthy bool, detail string) error {
	return s.db.WithContext(ctx).Create(&HealthCheckRow{
		Timestamp: nowUTC(),
		Component: component,
		Healthy:   healthy,
		Detail:    detail,
	}).Error
}
