package statistics

import "errors"

var ErrSessionNotFound = errors.New("Aufguss nicht gefunden")
