// README: Common identifier and coordinate types used across modules.
package types

// ID is an opaque entity identifier (orders, couriers, stores, routes).
type ID string

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}
