package http

import (
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/handler"
	"github.com/jainam01/FOURKID-sub000/internal/transport/http/middleware"
	"github.com/jainam01/FOURKID-sub000/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Catalog   *handler.CatalogHandler
	Cart      *handler.CartHandler
	Watchlist *handler.WatchlistHandler
	Order     *handler.OrderHandler
	Review    *handler.ReviewHandler
}

// NewApp builds the fiber app with tracing, panic recovery and per-IP rate
// limiting. A zero Limiter.Max disables the limiter.
func NewApp(httpCfg config.HTTP, limiterCfg config.Limiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  httpCfg.Timeout,
		WriteTimeout: httpCfg.Timeout,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())

	if limiterCfg.Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        limiterCfg.Max,
			Expiration: limiterCfg.Expiration,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"message": "Too many requests. Try again later.",
				})
			},
		}))
	}

	return app
}

func RegisterRoutes(app *fiber.App, h *Handlers, auth middleware.Authenticator, metricsPath string, gatherer prometheus.Gatherer) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get(metricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	authRequired := middleware.NewAuthMiddleware(auth)
	adminOnly := middleware.NewAdminMiddleware()

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/logout", h.Auth.Logout)
	authGroup.Post("/forgot-password", h.Auth.ForgotPassword)
	authGroup.Post("/reset-password", h.Auth.ResetPassword)

	user := api.Group("/user", authRequired)
	user.Get("", h.Auth.GetMe)
	user.Put("", h.Auth.UpdateProfile)
	user.Put("/password", h.Auth.ChangePassword)

	product := api.Group("/products")
	product.Get("", h.Product.List)
	product.Get("/:id", h.Product.FindByID)
	product.Get("/:id/reviews", h.Review.ListForProduct)
	product.Post("/:id/reviews", authRequired, h.Review.Create)

	api.Get("/categories", h.Catalog.ListCategories)
	api.Get("/categories/:slug", h.Catalog.GetCategory)
	api.Get("/banners", h.Catalog.ListActiveBanners)

	cart := api.Group("/cart", authRequired)
	cart.Get("", h.Cart.Get)
	cart.Post("", h.Cart.Add)
	cart.Delete("", h.Cart.Clear)
	cart.Put("/:id", h.Cart.UpdateQuantity)
	cart.Delete("/:id", h.Cart.Remove)

	watchlist := api.Group("/watchlist", authRequired)
	watchlist.Get("", h.Watchlist.List)
	watchlist.Post("", h.Watchlist.Add)
	watchlist.Delete("/:productId", h.Watchlist.Remove)

	order := api.Group("/orders", authRequired)
	order.Post("", h.Order.Create)
	order.Post("/checkout", h.Order.Checkout)
	order.Get("", h.Order.List)
	order.Get("/:id", h.Order.Get)
	order.Put("/:id/status", adminOnly, h.Order.UpdateStatus)

	admin := api.Group("/admin", authRequired, adminOnly)

	admin.Post("/products", h.Product.Create)
	admin.Put("/products/:id", h.Product.Update)
	admin.Delete("/products/:id", h.Product.Delete)

	admin.Post("/categories", h.Catalog.CreateCategory)
	admin.Put("/categories/:id", h.Catalog.UpdateCategory)
	admin.Delete("/categories/:id", h.Catalog.DeleteCategory)

	admin.Get("/banners", h.Catalog.ListAllBanners)
	admin.Post("/banners", h.Catalog.CreateBanner)
	admin.Put("/banners/:id", h.Catalog.UpdateBanner)
	admin.Delete("/banners/:id", h.Catalog.DeleteBanner)

	admin.Get("/reviews", h.Review.ListPending)
	admin.Put("/reviews/:id/approve", h.Review.Approve)
	admin.Delete("/reviews/:id", h.Review.Delete)

	admin.Get("/users", h.Auth.ListUsers)
	admin.Put("/users/:id/role", h.Auth.SetRole)
}
