package types

import "errors"

var (
	ErrEmptyTrace          = errors.New("trace must contain at least one point")
	ErrInvalidRouteType    = errors.New("invalid route type: walking, running, cycling or commuting")
	ErrInvalidSharingLevel = errors.New("invalid sharing level: private, anonymous or public")

	ErrRouteNotFound      = errors.New("route not found")
	ErrRouteAlreadyExists = errors.New("route already exists")

	ErrDatabaseFailed          = errors.New("database operation failed")
	ErrFailedToPublishRoute    = errors.New("failed to publish route event")
	ErrGeocodingUnavailable    = errors.New("geocoding service unavailable")
	ErrInvalidToken            = errors.New("invalid token")
	ErrExpiredToken            = errors.New("token expired")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
