package middleware

import "github.com/aretw0/wayfinder/pkg/ports"

// Middleware allows wrapping a Cache to add behavior.
type Middleware func(ports.Cache) ports.Cache

// Chain applies middlewares so that the first one is the outermost.
func Chain(cache ports.Cache, mws ...Middleware) ports.Cache {
	for i := len(mws) - 1; i >= 0; i-- {
		cache = mws[i](cache)
	}
	return cache
}
