// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/fixedwidth/pkg/api"     //nolint:depguard
	"github.com/ssargent/fixedwidth/pkg/catalog" //nolint:depguard
)

// CatalogLoader builds a layout catalog from a directory of spec files
type CatalogLoader func(dir string) (*catalog.Catalog, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	catalogLoader CatalogLoader
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		catalogLoader: catalog.Load,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// GetCatalogLoader returns the catalog loader
func (c *Container) GetCatalogLoader() CatalogLoader {
	return c.catalogLoader
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// SetCatalogLoader allows overriding the catalog loader (for testing)
func (c *Container) SetCatalogLoader(loader CatalogLoader) {
	c.catalogLoader = loader
}
