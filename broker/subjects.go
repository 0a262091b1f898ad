package broker

// NATS subjects used by the backend. Notification events are consumed by
// the out-of-process email worker; announcement events fan in to every
// running API instance's realtime hub.
const (
	NotificationSubject = "quill.notifications"
	AnnouncementSubject = "quill.announcements"
)
