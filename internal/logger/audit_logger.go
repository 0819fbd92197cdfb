// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for produced estimates and
// provider state changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogEstimate records one produced estimate.
func (al *AuditLogger) LogEstimate(traceID, prompt, sourceType, confidence, odds string, probabilityPct float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"trace_id":        traceID,
		"prompt":          prompt,
		"source_type":     sourceType,
		"confidence":      confidence,
		"odds":            odds,
		"probability_pct": probabilityPct,
		"timestamp":       timestamp.Unix(),
	}).Info("Estimate produced")
}

// LogDecline records a prompt the engine declined to price.
func (al *AuditLogger) LogDecline(traceID, prompt, reason, detail string) {
	al.WithFields(logrus.Fields{
		"trace_id": traceID,
		"prompt":   prompt,
		"reason":   reason,
		"detail":   detail,
	}).Info("Estimate declined")
}

// LogRosterRefresh records a roster index refresh.
func (al *AuditLogger) LogRosterRefresh(players int, digest string, durationMs int64, err error) {
	fields := logrus.Fields{
		"players":     players,
		"digest":      digest,
		"duration_ms": durationMs,
	}
	if err != nil {
		al.WithFields(fields).WithError(err).Warn("Roster refresh failed")
		return
	}
	al.WithFields(fields).Info("Roster refreshed")
}

// LogCalibrationLoad records which calibration bundle the service runs on.
func (al *AuditLogger) LogCalibrationLoad(version, signature, path string) {
	al.WithFields(logrus.Fields{
		"version":   version,
		"signature": signature,
		"path":      path,
	}).Info("Calibration bundle loaded")
}
