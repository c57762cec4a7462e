package routes

import (
	"net/http"

	"mercato/categories"
	"mercato/live"
	"mercato/middleware"
	"mercato/orders"
	"mercato/products"
	"mercato/ratelim"
	"mercato/users"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/uploads/*filepath", http.Dir("static/uploads"))
}

func AddCategoryRoutes(router *httprouter.Router) {
	router.GET("/api/v1/categories", ratelim.RateLimit(categories.GetCategories))
	router.GET("/api/v1/categories/:id", ratelim.RateLimit(categories.GetCategory))
	router.POST("/api/v1/categories", middleware.Authenticate(categories.CreateCategory))
	router.PUT("/api/v1/categories/:id", middleware.Authenticate(categories.EditCategory))
	router.DELETE("/api/v1/categories/:id", middleware.Authenticate(categories.DeleteCategory))
}

// Product routes. httprouter rejects static siblings of a wildcard, so the
// literal "get" segment of /products/get/count and friends rides the :id
// wildcard; those handlers never read it.
func AddProductRoutes(router *httprouter.Router) {
	router.GET("/api/v1/products", ratelim.RateLimit(products.GetProducts))
	router.GET("/api/v1/products/:id", ratelim.RateLimit(products.GetProduct))
	router.GET("/api/v1/products/:id/count", ratelim.RateLimit(products.GetProductsCount))
	router.GET("/api/v1/products/:id/featured/:limit", ratelim.RateLimit(products.GetFeaturedProducts))
	router.GET("/api/v1/products/:id/updates", live.ProductUpdates)
	router.POST("/api/v1/products", middleware.Authenticate(products.CreateProduct))
	router.PUT("/api/v1/products/:id", middleware.Authenticate(products.EditProduct))
	// PUT /api/v1/products/gallery-images/:productid
	router.PUT("/api/v1/products/:id/:productid", middleware.Authenticate(products.UpdateGalleryImages))
	router.DELETE("/api/v1/products/:id", middleware.Authenticate(products.DeleteProduct))
}

func AddOrderRoutes(router *httprouter.Router) {
	router.GET("/api/v1/orders", middleware.Authenticate(orders.GetOrders))
	router.GET("/api/v1/orders/:id", middleware.Authenticate(orders.GetOrder))
	router.GET("/api/v1/orders/:id/total-sales", middleware.Authenticate(orders.GetTotalSales))
	router.GET("/api/v1/orders/:id/count", middleware.Authenticate(orders.GetOrdersCount))
	router.GET("/api/v1/orders/:id/user-orders/:userid", middleware.Authenticate(orders.GetUserOrders))
	router.GET("/api/v1/orders/:id/receipt", middleware.Authenticate(orders.PrintReceipt))
	router.POST("/api/v1/orders", ratelim.RateLimit(middleware.Authenticate(orders.CreateOrder)))
	router.PUT("/api/v1/orders/:id", middleware.Authenticate(orders.EditOrder))
	router.DELETE("/api/v1/orders/:id", middleware.Authenticate(orders.DeleteOrder))
}

func AddUserRoutes(router *httprouter.Router) {
	router.GET("/api/v1/users", middleware.Authenticate(users.GetUsers))
	router.GET("/api/v1/users/:id", middleware.Authenticate(users.GetUser))
	router.GET("/api/v1/users/:id/count", middleware.Authenticate(users.GetUsersCount))
	router.POST("/api/v1/users", middleware.Authenticate(users.CreateUser))
	router.PUT("/api/v1/users/:id", middleware.Authenticate(users.EditUser))
	router.DELETE("/api/v1/users/:id", middleware.Authenticate(users.DeleteUser))

	router.POST("/api/v1/users/login", ratelim.RateLimit(users.Login))
	router.POST("/api/v1/users/register", ratelim.RateLimit(users.Register))
}

// The stock websocket checks its own query-param token; browsers cannot set
// an Authorization header on an upgrade request.
func AddLiveRoutes(router *httprouter.Router, hub *live.Hub) {
	router.GET("/ws/stock", live.StockSocket(hub))
}
