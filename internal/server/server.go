// Package server implements the remote sync endpoint: the cloud-side
// half of the sync protocol. It accepts pushed change batches, serves
// the full dataset, and keeps an append-only change log.
package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// New builds an echo instance with the sync API mounted. When apiKey is
// non-empty, every request must carry it as a bearer token.
func New(repo Repository, apiKey string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	if apiKey != "" {
		e.Use(middleware.KeyAuth(func(key string, c echo.Context) (bool, error) {
			return key == apiKey, nil
		}))
	}

	NewHandler(repo).Register(e)
	return e
}
