package service

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrBatteryNotFound = errors.New("battery not found")
)
