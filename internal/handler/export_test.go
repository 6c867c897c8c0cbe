package handler

// WriteNotificationEvent exposes the SSE frame writer to external tests.
var WriteNotificationEvent = writeNotificationEvent
