package constants

import "time"

// 持久化 key，對應前端 localStorage 的 key
const (
	CurrentUserKey        = "parkeat_user"
	RegisteredUsersKey    = "parkeat_registered_users"
	CartKey               = "parkeat_cart"
	OrderHistoryKey       = "parkeat_orders"
	NotificationsKey      = "parkeat_notifications"
	LocationPermissionKey = "parkeat_location_permission"
	LastLocationKey       = "parkeat_location"
	OnboardingSeenKey     = "parkeat_onboarding_complete"
)

// 預設值
const (
	DefaultAuthDelay         = 800 * time.Millisecond
	DefaultPaymentDelay      = 2 * time.Second
	DefaultProgressInterval  = 5 * time.Second
	DefaultLocationTimeout   = 10 * time.Second
	DefaultLocationMaxAge    = 5 * time.Minute
	DefaultServiceFeePercent = "0.05"
	DefaultMinServiceFee     = "0.50"
	DefaultEstimatedDelivery = "15-20 min"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Prod  ENV = "production"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-ID"
)
