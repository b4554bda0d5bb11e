package entity

import "time"

// NotificationLevel mirrors the toast kinds shown to the user.
type NotificationLevel string

const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyError   NotificationLevel = "error"
	NotifyLoading NotificationLevel = "loading"
)

// Notification is a short-lived user facing message.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Confirmation is an application prompt waiting for a confirm or cancel answer.
type Confirmation struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}
