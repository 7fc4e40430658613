package public

import (
	"errors"

	"github.com/bookvault-next/internal/http/response"
	"github.com/bookvault-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, msg: "invalid cart item"},
	{target: service.ErrExcessiveRemoval, code: response.CodeBadRequest, msg: "cannot remove more copies than in cart"},
	{target: service.ErrCartSessionNotFound, code: response.CodeNotFound, msg: "cart session not found"},
	{target: service.ErrCartSessionExpired, code: response.CodeBadRequest, msg: "cart session expired"},
	{target: service.ErrBookNotFound, code: response.CodeNotFound, msg: "book not found"},
	{target: service.ErrBookNotAvailable, code: response.CodeBadRequest, msg: "book is not available"},
	{target: service.ErrBookOutOfStock, code: response.CodeBadRequest, msg: "not enough copies in stock"},
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, msg: "invalid payment request"},
	{target: service.ErrCartSessionNotFound, code: response.CodeNotFound, msg: "cart session not found"},
	{target: service.ErrCartSessionExpired, code: response.CodeBadRequest, msg: "cart session expired"},
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "cart is empty"},
	{target: service.ErrPaymentProviderNotSupported, code: response.CodeBadRequest, msg: "payment provider not supported"},
	{target: service.ErrPaymentGatewayRequestFailed, code: response.CodeBadRequest, msg: "payment gateway request failed"},
	{target: service.ErrPaymentGatewayResponseInvalid, code: response.CodeBadRequest, msg: "payment gateway response invalid"},
	{target: service.ErrPaymentCreateFailed, code: response.CodeInternal, msg: "payment create failed"},
}

var paymentStatusErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, msg: "invalid payment request"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, msg: "payment not found"},
	{target: service.ErrPaymentProviderNotSupported, code: response.CodeBadRequest, msg: "payment provider not supported"},
	{target: service.ErrPaymentGatewayRequestFailed, code: response.CodeBadRequest, msg: "payment gateway request failed"},
	{target: service.ErrPaymentGatewayResponseInvalid, code: response.CodeBadRequest, msg: "payment gateway response invalid"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "cart operation failed")
}

func respondPaymentCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentCreateErrorRules, response.CodeInternal, "payment create failed")
}

func respondPaymentStatusError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentStatusErrorRules, response.CodeInternal, "payment status query failed")
}
