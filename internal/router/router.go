// Package router wires handlers, middleware and the error translator onto
// an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/audioshop/audioshop-api/internal/config"
	"github.com/audioshop/audioshop-api/internal/handler"
	"github.com/audioshop/audioshop-api/internal/middleware"
	"github.com/audioshop/audioshop-api/internal/model"
)

// Deps carries everything Register needs to build the route table.
type Deps struct {
	Cfg      config.Config
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Comments *handler.CommentHandler
	Checkout *handler.CheckoutHandler
	Users    middleware.IdentityResolver
	Redis    *redis.Client // nil disables caching and rate limiting
}

// Register installs global middleware and all API routes. Read-heavy
// catalog endpoints get the Redis response cache; every route sits behind
// the token-bucket rate limiter when Redis is available.
func Register(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = handler.NewValidator()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.Cfg.ClientURL},
		AllowCredentials: true,
	}))

	if d.Redis != nil {
		if rl := config.LoadRateLimitConfig(); rl.Enabled {
			e.Use(middleware.NewTokenBucket(rl, d.Redis))
		}
	}

	var cache echo.MiddlewareFunc
	if d.Redis != nil {
		if cc := config.LoadCacheConfig(); cc.Enabled {
			cache = middleware.NewRedisCache(cc, d.Redis)
		}
	}
	withCache := func(h echo.HandlerFunc) echo.HandlerFunc {
		if cache == nil {
			return h
		}
		return cache(h)
	}

	authn := middleware.Authenticate(d.Cfg.JWTAccessSecret, d.Users)
	admin := middleware.RequireRoles(model.RoleAdmin)

	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", d.Auth.Signup)
	auth.POST("/signin", d.Auth.Signin)
	auth.POST("/signout", d.Auth.Signout, authn)
	api.GET("/refresh-token", d.Auth.Refresh)

	products := api.Group("/products")
	products.GET("", withCache(d.Products.GetProducts))
	products.GET("/categories/:slug", withCache(d.Products.GetProductsByCategory))
	products.GET("/:productId", d.Products.GetProduct)
	products.POST("/create", d.Products.CreateProduct, authn, admin)
	products.PATCH("/:productId", d.Products.UpdateProduct, authn, admin)
	products.DELETE("/:productId", d.Products.DeleteProduct, authn, admin)
	products.POST("/:productId/comment", d.Comments.CreateComment, authn)

	api.DELETE("/comments/:commentId", d.Comments.DeleteComment, authn)

	api.PATCH("/stripe/create-checkout-session", d.Checkout.CreateSession, authn)
	api.GET("/success", d.Checkout.Success)
}
