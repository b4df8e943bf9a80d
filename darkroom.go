// Package darkroom implements the web backend for a photography studio's
// public site: blog posts and gallery collections stored in SQLite, plus
// image uploads managed under the public static directory. The HTTP surface
// is a JSON API consumed by the studio's front end.
package darkroom

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
)

// App is the central application. It wires together the store, the upload
// service, the listing cache, handlers, and middleware.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Store   *Store
	Uploads *Uploader
	Cache   *listingCache

	uploadLimiter *rateLimiter
	cron          *cron.Cron
}

// New creates a new App with the given configuration.
func New(cfg Config) *App {
	return &App{
		Config: cfg,
		Echo:   echo.New(),
	}
}

// Start initializes the database, cache, middleware, routes, and scheduler,
// then starts the server.
func (a *App) Start() error {
	store, err := OpenStore(a.Config.DatabasePath)
	if err != nil {
		return err
	}
	a.Store = store
	a.Uploads = NewUploader(a.Config.StaticDir, a.Config.SiteURL)
	a.Cache = newListingCache(store, a.Config.ListingCacheTTL)
	a.uploadLimiter = newRateLimiter(a.Config.UploadRate, uploadRateWindow)

	a.setupMiddleware()
	a.setupRoutes()
	a.cron = a.startScheduler()

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", a.handleHealth)

	api := e.Group("/api")

	api.GET("/blog", a.handleListPosts)
	api.POST("/blog", a.handleCreatePost)
	api.GET("/blog/:key", a.handleGetPost)
	api.PUT("/blog/:key", a.handleUpdatePost)
	api.DELETE("/blog/:key", a.handleDeletePost)
	api.POST("/blog/:key/like", a.handleLikePost)
	api.POST("/blog/:key/view", a.handleViewPost)

	api.GET("/gallery/collections", a.handleListCollections)
	api.POST("/gallery/collections", a.handleCreateCollection)
	api.GET("/gallery/collections/:id", a.handleGetCollection)
	api.PUT("/gallery/collections/:id", a.handleUpdateCollection)
	api.DELETE("/gallery/collections/:id", a.handleDeleteCollection)
	api.POST("/gallery/collections/:id/images", a.handleAddImage)
	api.PUT("/gallery/images/:id", a.handleUpdateImage)
	api.DELETE("/gallery/images/:id", a.handleDeleteImage)

	api.POST("/upload", a.handleUpload)
	api.POST("/upload/post-folder", a.handleFolderUpload)
	api.GET("/upload/post-folder", a.handleFolderList)
	api.DELETE("/upload/post-folder", a.handleFolderDelete)
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.cron != nil {
		a.cron.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
