package notification

const (
	testTitle   = "Test Notification"
	testBody    = "This is a test notification to verify your setup works correctly."
	testMessage = "test_notification"
)

type deviceTokenBody struct {
	DeviceToken string `json:"device_token" binding:"required,max=512"`
}

// TestResult describes a delivered test push.
type TestResult struct {
	UserID      int64  `json:"user_id"`
	MessageID   string `json:"message_id"`
	TokenLength int    `json:"token_length"`
}
