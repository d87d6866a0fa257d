package api

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"time"
)

// AuditLogger handles audit-conscious logging with no raw seed or
// credential exposure.
type AuditLogger struct {
	logger *log.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger() *AuditLogger {
	logger := log.New(os.Stdout, "[AUDIT] ", log.LstdFlags|log.LUTC)
	return &AuditLogger{
		logger: logger,
	}
}

// LogRoundSettled logs a settled round with its stake flow.
func (al *AuditLogger) LogRoundSettled(
	requestID string,
	game string,
	outcomeID string,
	stake, payout int64,
	won bool,
) {
	al.logger.Printf(
		"round_settled request_id=%s game=%s outcome_id=%s stake=%d payout=%d won=%t engine_version=%s timestamp=%s",
		requestID,
		game,
		outcomeID,
		stake,
		payout,
		won,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent logs security-related events (failed validations, suspicious activity)
func (al *AuditLogger) LogSecurityEvent(
	requestID string,
	eventType string,
	description string,
	context map[string]interface{},
	remoteAddr string,
) {
	sanitizedContext := al.sanitizeContext(context)

	al.logger.Printf(
		"security_event request_id=%s type=%s description=%q context=%+v remote_addr=%s engine_version=%s timestamp=%s",
		requestID,
		eventType,
		description,
		sanitizedContext,
		remoteAddr,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogAuditEvent logs audit events for compliance and debugging
func (al *AuditLogger) LogAuditEvent(
	requestID string,
	action string,
	resource string,
	outcome string,
	details map[string]interface{},
) {
	sanitizedDetails := al.sanitizeContext(details)

	al.logger.Printf(
		"audit_event request_id=%s action=%s resource=%s outcome=%s details=%+v engine_version=%s timestamp=%s",
		requestID,
		action,
		resource,
		outcome,
		sanitizedDetails,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// hashSeed creates a SHA256 hash of a seed for logging (first 16 chars for brevity)
func (al *AuditLogger) hashSeed(seed string) string {
	if seed == "" {
		return "empty"
	}
	hash := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(hash[:])[:16]
}

// sanitizeContext removes sensitive data from context maps
func (al *AuditLogger) sanitizeContext(context map[string]interface{}) map[string]interface{} {
	if context == nil {
		return nil
	}

	sanitized := make(map[string]interface{})
	for key, value := range context {
		switch key {
		case "server_seed", "serverSeed", "client_seed", "clientSeed":
			// Hash seeds instead of logging them
			if strVal, ok := value.(string); ok {
				sanitized[key+"_hash"] = al.hashSeed(strVal)
			} else {
				sanitized[key+"_hash"] = "non_string_value"
			}
		case "private_key", "secret", "password", "token", "refresh_token", "api_key", "authorization":
			// Never log these
			sanitized[key] = "[REDACTED]"
		default:
			sanitized[key] = value
		}
	}

	return sanitized
}

// LogSystemStartup logs system startup information
func (al *AuditLogger) LogSystemStartup(addr string, config map[string]interface{}) {
	sanitizedConfig := al.sanitizeContext(config)

	al.logger.Printf(
		"system_startup addr=%s config=%+v engine_version=%s git_commit=%s build_time=%s timestamp=%s",
		addr,
		sanitizedConfig,
		EngineVersion,
		GitCommit,
		BuildTime,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemShutdown logs system shutdown information
func (al *AuditLogger) LogSystemShutdown(reason string, uptime time.Duration) {
	al.logger.Printf(
		"system_shutdown reason=%s uptime=%v engine_version=%s timestamp=%s",
		reason,
		uptime,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}
