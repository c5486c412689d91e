// Package config handles application configuration loading and validation.
package config

import "time"

// Default configuration values.
const (
	DefaultClientProcessName = "LeagueClient"

	DefaultRecoveryPolicy = RecoveryBestEffort
	DefaultStagedExtract  = true
	DefaultKillTimeout    = 30 * time.Second

	DefaultMetricsEnabled        = false
	DefaultMetricsPushgatewayURL = ""

	DefaultRetryMaxAttempts  = 3
	DefaultRetryInitialDelay = 2 * time.Second
	DefaultRetryMaxDelay     = 30 * time.Second

	DefaultAppriseEnabled = false
	DefaultAppriseURL     = ""
	DefaultAppriseKey     = ""
	DefaultAppriseNotify  = NotifyError

	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
)

// NotifyLevel represents when to send remote notifications.
type NotifyLevel string

const (
	// NotifyError sends notifications only on errors.
	NotifyError NotifyLevel = "error"
	// NotifyWarning sends notifications on errors and warnings.
	NotifyWarning NotifyLevel = "warning"
	// NotifyAlways sends notifications on every operation.
	NotifyAlways NotifyLevel = "always"
)

// IsValid returns true if the notify level is valid.
func (n NotifyLevel) IsValid() bool {
	switch n {
	case NotifyError, NotifyWarning, NotifyAlways:
		return true
	default:
		return false
	}
}

// String returns the string representation of the notify level.
func (n NotifyLevel) String() string {
	return string(n)
}

// RecoveryPolicy decides what a restore does when its recovery snapshot fails.
type RecoveryPolicy string

const (
	// RecoveryBestEffort logs the failure and restores anyway.
	RecoveryBestEffort RecoveryPolicy = "best_effort"
	// RecoveryRequired aborts the restore.
	RecoveryRequired RecoveryPolicy = "required"
)

// IsValid returns true if the recovery policy is valid.
func (p RecoveryPolicy) IsValid() bool {
	return p == RecoveryBestEffort || p == RecoveryRequired
}

// String returns the string representation of the recovery policy.
func (p RecoveryPolicy) String() string {
	return string(p)
}
