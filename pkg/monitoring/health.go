package monitoring

import "context"

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthReport is the liveness report of the gateway.
// A healthy report carries the operator balance, an unhealthy one only the error.
type HealthReport struct {
	Status          HealthStatus `json:"status"`
	OperatorAccount string       `json:"operatorAccount,omitempty"`
	Balance         string       `json:"balance,omitempty"`
	Network         string       `json:"network,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// Healthy reports whether the report is healthy
func (r *HealthReport) Healthy() bool {
	return r.Status == HealthStatusHealthy
}

// BalanceProbe returns the display balance of the account it probes
type BalanceProbe func(ctx context.Context) (string, error)

// HealthChecker turns a balance probe on the operator account into a report
type HealthChecker struct {
	operatorAccount string
	network         string
	probe           BalanceProbe
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(operatorAccount, network string, probe BalanceProbe) *HealthChecker {
	return &HealthChecker{
		operatorAccount: operatorAccount,
		network:         network,
		probe:           probe,
	}
}

// Check runs the probe once
func (hc *HealthChecker) Check(ctx context.Context) *HealthReport {
	balance, err := hc.probe(ctx)
	if err != nil {
		return &HealthReport{
			Status: HealthStatusUnhealthy,
			Error:  err.Error(),
		}
	}

	return &HealthReport{
		Status:          HealthStatusHealthy,
		OperatorAccount: hc.operatorAccount,
		Balance:         balance,
		Network:         hc.network,
	}
}
