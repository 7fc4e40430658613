package provider

import (
	"github.com/bookvault-next/internal/authz"
	"github.com/bookvault-next/internal/cache"
	"github.com/bookvault-next/internal/config"
	"github.com/bookvault-next/internal/logger"
	"github.com/bookvault-next/internal/models"
	"github.com/bookvault-next/internal/queue"
	"github.com/bookvault-next/internal/repository"
	"github.com/bookvault-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo     repository.UserRepository
	BookRepo     repository.BookRepository
	AuthorRepo   repository.AuthorRepository
	CategoryRepo repository.CategoryRepository
	CartRepo     repository.CartRepository
	OrderRepo    repository.OrderRepository
	PaymentRepo  repository.PaymentRepository

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	UserService     *service.UserService
	EmailService    *service.EmailService
	CaptchaService  *service.CaptchaService
	BookService     *service.BookService
	AuthorService   *service.AuthorService
	CategoryService *service.CategoryService
	CartService     *service.CartService
	OrderService    *service.OrderService
	PaymentService  *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.BookRepo = repository.NewBookRepository(db)
	c.AuthorRepo = repository.NewAuthorRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.UserRepo)
	c.UserService = service.NewUserService(c.UserRepo)
	c.BookService = service.NewBookService(c.BookRepo, c.AuthorRepo, c.CategoryRepo)
	c.AuthorService = service.NewAuthorService(c.AuthorRepo, c.BookRepo)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo, c.BookRepo)
	c.CartService = service.NewCartService(c.Config.Cart, c.CartRepo, c.BookRepo, c.QueueClient)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.UserRepo)
	c.PaymentService = service.NewPaymentService(&c.Config.Payment, c.PaymentRepo, c.OrderRepo, c.CartRepo, c.CartService, c.QueueClient)
}
