package config

const (
	// Listings
	DefaultReportPageLimit  = 20
	DefaultWarningPageLimit = 20
	DefaultLogPageLimit     = 50
	DefaultMaxPageLimit     = 200

	// Dashboard
	RecentActivityLimit = 10

	// Notifications
	WarningNotificationTitle   = "Warning Received"
	NotificationTypeModeration = "MODERATION"

	// Live feed
	EventChannel = "moderation:events"
)
