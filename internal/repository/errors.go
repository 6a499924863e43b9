package repository

import "errors"

var ErrNotFound = errors.New("record not found")
var ErrVersionConflict = errors.New("version conflict")
