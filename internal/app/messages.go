package app

import (
	"time"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// StatsLoadedMsg contains loaded collection totals.
type StatsLoadedMsg struct {
	Stats models.Stats
	Error error
}

// ReportsChangedMsg tells tabs that stored reports changed and views should reload.
type ReportsChangedMsg struct {
	// ID is the affected report, empty when many changed.
	ID string
}

// DailyChangedMsg tells tabs that daily aggregates changed.
type DailyChangedMsg struct{}

// SaveTypeChangedMsg signals that the type for new reports changed.
type SaveTypeChangedMsg struct {
	Type models.ReportType
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "stats"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
