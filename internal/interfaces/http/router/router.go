// Package router wires HTTP handlers onto the gin engine. Handlers are
// grouped per domain and mounted under a versioned API prefix, so the
// server entrypoint declares routes without touching gin groups directly.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a set of routes onto an API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and middleware, then mounts everything
// under /api/<version> in one Setup call.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
	middleware []gin.HandlerFunc
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithAPIVersion overrides the version segment of the API prefix.
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router mounting routes under /api/v1 by default.
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar to be mounted by Setup.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Use adds middleware applied to every route under the API prefix.
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Setup mounts all registered routes on the engine.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	api.Use(r.middleware...)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup declares the routes of one domain (orders, shipments,
// settlements and so on) under a shared path prefix.
type DomainGroup struct {
	name       string
	prefix     string
	routes     []route
	middleware []gin.HandlerFunc
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a route group mounted at the given prefix.
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware applied to every route in this group.
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route relative to the group prefix.
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route relative to the group prefix.
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// PUT registers a PUT route relative to the group prefix.
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers)
}

// DELETE registers a DELETE route relative to the group prefix.
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

// RegisterRoutes mounts the group's routes onto rg.
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	group.Use(dg.middleware...)

	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}
