package http

import (
	_ "github.com/DRSN-tech/shop-backend/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/shop-backend/internal/usecase"
	"github.com/DRSN-tech/shop-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(prUC usecase.ProductUC, cartUC usecase.CartUC, orderUC usecase.OrderUC, reportUC usecase.ReportUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(withIdentity)

		prHandler := NewProductHandler(prUC, r.logger)
		cartHandler := NewCartHandler(cartUC, r.logger)
		orderHandler := NewOrderHandler(orderUC, cartUC, r.logger)
		dashboardHandler := NewDashboardHandler(reportUC, r.logger)

		registerCatalogRoutes(v1, prHandler)
		registerCartRoutes(v1, cartHandler)
		registerOrderRoutes(v1, orderHandler)
		registerAdminRoutes(v1, prHandler, orderHandler, dashboardHandler)
	})
}

func registerCatalogRoutes(router chi.Router, prHandler *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", prHandler.listProducts)
		pr.Get("/{id}", prHandler.getProduct)
	})
}

func registerCartRoutes(router chi.Router, cartHandler *CartHandler) {
	router.Route("/cart", func(cart chi.Router) {
		cart.Use(requireUser)
		cart.Get("/", cartHandler.getCart)
		cart.Post("/items", cartHandler.addItem)
		cart.Delete("/items/{productID}", cartHandler.removeItem)
		cart.Post("/checkout", cartHandler.checkout)
	})
}

func registerOrderRoutes(router chi.Router, orderHandler *OrderHandler) {
	router.Route("/orders", func(orders chi.Router) {
		orders.Use(requireUser)
		orders.Get("/", orderHandler.listOrders)
	})
}

func registerAdminRoutes(router chi.Router, prHandler *ProductHandler, orderHandler *OrderHandler, dashboardHandler *DashboardHandler) {
	router.Route("/admin", func(admin chi.Router) {
		admin.Use(requireAdmin)

		admin.Post("/products", prHandler.createProduct)
		admin.Put("/products/{id}", prHandler.updateProduct)
		admin.Delete("/products/{id}", prHandler.deleteProduct)

		admin.Get("/orders", orderHandler.adminListOrders)
		admin.Get("/carts", orderHandler.adminListCarts)
		admin.Get("/dashboard", dashboardHandler.getDashboard)
		admin.Post("/reports/daily-sales", dashboardHandler.sendDailyReport)
	})
}
