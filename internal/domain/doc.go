// Package domain models the TaskTrek visitor-facing concepts: the display
// theme, weather queries and forecasts, sign-in credentials, sessions and the
// activity events emitted when any of them change.
//
// # Theme
//
// A visitor's display mode is either light or dark. The effective theme is
// resolved with this priority:
//
//	explicit choice (persisted)  >  OS preference (client hint)  >  light
//
// [Tokens] maps a theme to the style tokens consumed by the view layer. It is
// a pure function; nothing in this package mutates global display state.
//
// # Weather queries
//
// A [Query] is either a free-text place name ("Pune") or a coordinate pair
// rendered as "lat,lon" with the shortest decimal form of each value, e.g.
// "12.9,77.6". Exactly one form is active per fetch.
//
// A [WeatherResult] is the tri-state outcome owned by the weather workflow:
//
//	idle -> loading -> data | error -> loading -> ...
//
// Only one of loading, error and data is visible at a time.
//
// # Credentials
//
// Credentials are validated with two independent checks:
//
//	email:    local@domain.tld shape, no whitespace
//	password: at least 6 characters
//
// Both flags may be set at once. Credentials are never persisted.
package domain
