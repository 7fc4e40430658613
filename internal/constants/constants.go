package constants

// 订单状态常量
const (
	OrderStatusCreated = "created"
	OrderStatusSuccess = "success"
	OrderStatusFailed  = "failed"
)

// 支付状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
)

// 支付提供方常量
const (
	PaymentProviderYooKassa = "yookassa"
	PaymentProviderWechat   = "wechat"
)

// 结算输入状态常量（轮询终态映射到结算入参）
const (
	SettleStatusSuccess = "success"
	SettleStatusFailed  = "failed"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 用户角色常量
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志失败原因常量
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidEmail       = "invalid_email"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskOrderSummaryEmail = "order:summary_email"
	TaskCartExpire        = "cart:expire"
	TaskPaymentWatch      = "payment:watch"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "bv"
)

// 币种常量
const (
	SiteCurrencyDefault = "RUB"
)

// 购物车会话 Cookie 名称
const ShoppingSessionCookieName = "shopping_session_id"
