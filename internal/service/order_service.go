package service

import (
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/repository"
)

// OrderService 订单服务（订单由结算流程生成，这里只做查询）
type OrderService struct {
	orderRepo repository.OrderRepository
	userRepo  repository.UserRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, userRepo repository.UserRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, userRepo: userRepo}
}

// GetByID 获取订单详情，非管理员只能查看自己的订单
func (s *OrderService) GetByID(orderID string, requesterID *uint, isAdmin bool) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin {
		if requesterID == nil || order.UserID == nil || *order.UserID != *requesterID {
			return nil, ErrOrderAccessDenied
		}
	}
	return order, nil
}

// GetByPaymentID 按支付ID获取订单
func (s *OrderService) GetByPaymentID(paymentID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByPaymentID(paymentID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser 获取用户自己的订单列表
func (s *OrderService) ListByUser(userID uint) ([]models.Order, error) {
	return s.orderRepo.ListByUser(userID)
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// BuildOrderSummaryEmailInput 由订单组装摘要邮件内容
func (s *OrderService) BuildOrderSummaryEmailInput(orderID string) (*OrderSummaryEmailInput, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID == nil {
		return nil, ErrNotFound
	}
	user, err := s.userRepo.GetByID(*order.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	lines := make([]OrderSummaryEmailLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, OrderSummaryEmailLine{
			BookName:  item.BookName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.TotalPrice,
		})
	}
	return &OrderSummaryEmailInput{
		OrderID:   order.ID,
		OrderDate: order.OrderDate.Format("2006-01-02 15:04"),
		TotalSum:  order.TotalSum,
		Currency:  order.Currency,
		Recipient: user.Email,
		Lines:     lines,
	}, nil
}
