package net

import "errors"

// ErrSessionClosed is returned when sending on a disposing session.
var ErrSessionClosed = errors.New("net: session closed")
