package model

import "time"

const DefaultTimeout = 500 * time.Millisecond
const DefaultWorkerCount = 4
const DefaultQueueSize = 256
const DefaultMaxDeliveries = 16
const DefaultConflictAttempts = 3

const HeaderContentType = "Content-Type"
const HeaderIdempotencyKey = "Idempotency-Key"

const AdminTokenCookie = "admin-token"

type ContextKey string

const (
	KeyContextLogger  ContextKey = "logger"
	KeyContextAdminID ContextKey = "admin_id"
)

const KeyLoggerError = "error"
