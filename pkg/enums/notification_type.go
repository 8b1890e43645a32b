package enums

import "fmt"

// NotificationType classifies dispatched notifications.
type NotificationType string

const (
	NotificationTypeRequestUpdate   NotificationType = "request_update"
	NotificationTypeLoanUpdate      NotificationType = "loan_update"
	NotificationTypeReturnRequested NotificationType = "return_requested"
	NotificationTypeHandoverReady   NotificationType = "handover_ready"
	NotificationTypeDismantleDone   NotificationType = "dismantle_done"
	NotificationTypeLowStock        NotificationType = "low_stock"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeRequestUpdate,
	NotificationTypeLoanUpdate,
	NotificationTypeReturnRequested,
	NotificationTypeHandoverReady,
	NotificationTypeDismantleDone,
	NotificationTypeLowStock,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
