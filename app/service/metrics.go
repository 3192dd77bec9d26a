package service

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation labels for AuthOperations.
const (
	OperationRegister    = "register"
	OperationLogin       = "login"
	OperationRefresh     = "refresh"
	OperationLogout      = "logout"
	OperationCurrentUser = "current_user"
)

// Outcome labels for AuthOperations.
const (
	OutcomeSuccess         = "success"
	OutcomeRejected        = "rejected"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeError           = "error"
)

const (
	hashOpHash   = "hash"
	hashOpVerify = "verify"
)

// AuthOperations counts auth service calls by operation and outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "nutrition_auth_operations_total",
		Help: "Total number of authentication operations",
	},
	[]string{"operation", "outcome"},
)

// PasswordHashDuration tracks time spent inside bcrypt, excluding the wait
// for a hashing slot.
var PasswordHashDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "nutrition_password_hash_duration_seconds",
		Help:    "Password hashing and verification duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"op"},
)

// RegisterMetrics registers service metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(AuthOperations)
	reg.MustRegister(PasswordHashDuration)
}

func recordOperation(operation string, err error) {
	AuthOperations.WithLabelValues(operation, outcomeFor(err)).Inc()
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidOrExpiredToken):
		return OutcomeUnauthenticated
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicateEmail):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}

func observeHash(op string, start time.Time) {
	PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
