package domain

import (
	"context"
	"errors"
)

// ErrPositionUnavailable is returned by a PositionSource that cannot produce
// a sample (permission denied, lookup failed, private address).
var ErrPositionUnavailable = errors.New("position unavailable")

// Position is a WGS-84 latitude/longitude pair.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PositionSource yields a single coordinate sample or an error. A nil
// PositionSource means the capability is absent.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// PositionFunc adapts a function to PositionSource.
type PositionFunc func(ctx context.Context) (Position, error)

func (f PositionFunc) CurrentPosition(ctx context.Context) (Position, error) { return f(ctx) }

// FixedPosition is a PositionSource that always reports the same coordinates,
// typically a sample already taken by the browser.
type FixedPosition Position

func (p FixedPosition) CurrentPosition(context.Context) (Position, error) {
	return Position(p), nil
}
