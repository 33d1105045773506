package yowsl

// This file exports private functions used for unit testing

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/ubuntu/yowsl/internal/backend"
)

// NewWithBackend builds an API on top of any backend, bypassing library loading.
func NewWithBackend(b backend.Backend) *API {
	return &API{backend: b, log: log.New(io.Discard)}
}
