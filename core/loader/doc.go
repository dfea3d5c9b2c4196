// Package loader provides the plugin-like feature loading system.
//
// Each feature (mapview, pins, board, integrity) implements Feature and is
// registered with a Manager by the start command. LoadAll mounts the routes
// of every enabled feature on the Fiber router, in registration order.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
package loader
