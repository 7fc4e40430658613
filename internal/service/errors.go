package service

import "errors"

// 服务层统一业务错误，HTTP 层通过 errors.Is 映射状态码
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidEmail       = errors.New("邮箱格式无效")
	ErrEmailExists        = errors.New("邮箱已被注册")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrUserDisabled       = errors.New("账号已被禁用")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrProfileEmpty       = errors.New("没有需要更新的资料")
	ErrInvalidUserStatus  = errors.New("用户状态无效")

	ErrCaptchaRequired      = errors.New("需要验证码")
	ErrCaptchaInvalid       = errors.New("验证码错误")
	ErrCaptchaConfigInvalid = errors.New("验证码配置无效")

	ErrEmailServiceDisabled      = errors.New("邮件服务未启用")
	ErrEmailServiceNotConfigured = errors.New("邮件服务未配置")

	ErrInvalidBookInput    = errors.New("图书参数无效")
	ErrBookNotFound        = errors.New("图书不存在")
	ErrBookNotAvailable    = errors.New("图书已下架")
	ErrBookSlugExists      = errors.New("图书标识已存在")
	ErrBookOutOfStock      = errors.New("图书库存不足")
	ErrAuthorNotFound      = errors.New("作者不存在")
	ErrAuthorHasBooks      = errors.New("作者名下仍有图书")
	ErrCategoryNotFound    = errors.New("分类不存在")
	ErrCategorySlugExists  = errors.New("分类标识已存在")
	ErrCategoryHasBooks    = errors.New("分类下仍有图书")
	ErrInvalidCartItem     = errors.New("购物车参数无效")
	ErrExcessiveRemoval    = errors.New("移除数量超过购物车中的数量")
	ErrCartSessionNotFound = errors.New("购物车会话不存在")
	ErrCartSessionExpired  = errors.New("购物车会话已过期")
	ErrCartEmpty           = errors.New("购物车为空")

	ErrPaymentInvalid                = errors.New("支付参数无效")
	ErrPaymentNotFound               = errors.New("支付记录不存在")
	ErrPaymentCreateFailed           = errors.New("支付创建失败")
	ErrPaymentUpdateFailed           = errors.New("支付更新失败")
	ErrPaymentAlreadySettled         = errors.New("支付已结算")
	ErrPaymentProviderNotSupported   = errors.New("不支持的支付提供方")
	ErrPaymentGatewayRequestFailed   = errors.New("支付网关请求失败")
	ErrPaymentGatewayResponseInvalid = errors.New("支付网关响应无效")
	ErrPaymentSettlementFailed       = errors.New("支付结算失败")
	ErrPaymentRefundFailed           = errors.New("支付退款失败")

	ErrOrderNotFound     = errors.New("订单不存在")
	ErrOrderAccessDenied = errors.New("无权访问该订单")
)
