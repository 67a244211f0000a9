package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// ImageFilePermissions is the permission for downloaded images (rw-r--r--)
	ImageFilePermissions = 0o644
)

// Lifecycle constants
const (
	// DefaultCompletionTitle is the embed title the bot sets when a generation is done
	DefaultCompletionTitle = "Done!"
	// DefaultPlaceholderWidth is the width of the image the bot posts instead of withheld content
	DefaultPlaceholderWidth = 512
	// DefaultMessageCacheSize is how many messages the gateway state keeps for BeforeUpdate
	DefaultMessageCacheSize = 500
)

// Image constants
const (
	// DefaultImageTimeout bounds a single image download
	DefaultImageTimeout = 30 * time.Second
	// DefaultImageMaxSize caps a single image download
	DefaultImageMaxSize = "25MB"
)

// Web constants
const (
	// DefaultPageSize is the number of records per listing page
	DefaultPageSize = 9
	// DefaultListenAddr is the listing server address
	DefaultListenAddr = ":5001"
	// DefaultScopeChannel is the only channel the listing shows
	DefaultScopeChannel = "gbclyde"
	// DefaultRateLimitRPS is the per-client request rate on the listing
	DefaultRateLimitRPS = 5
	// DefaultRateLimitBurst is the per-client burst on the listing
	DefaultRateLimitBurst = 10
	// DefaultShutdownTimeout bounds graceful HTTP shutdown
	DefaultShutdownTimeout = 10 * time.Second
)

// Records CLI constants
const (
	// DefaultRecordsLimit is the default number of records the CLI lists
	DefaultRecordsLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
