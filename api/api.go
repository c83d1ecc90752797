package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/utils"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:               "vpoint-api",
			DisableStartupMessage: true,
			ReadTimeout:           15 * time.Second,
			// no WriteTimeout: config streams stay open
			IdleTimeout: 2 * time.Minute,
			BodyLimit:   1 << 20,
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	utils.Log.Info("Starting API Server")
	utils.Log.Infof("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits up to timeout for open requests
func (s *APIServer) Shutdown(timeout time.Duration) error {
	utils.Log.Info("Shutting down API Server")
	return s.app.ShutdownWithTimeout(timeout)
}
