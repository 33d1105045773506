//go:build !yowslmock

package yowsl

import (
	"context"

	"github.com/ubuntu/yowsl/internal/backend"
	"github.com/ubuntu/yowsl/internal/backend/windows"
)

func selectBackend(_ context.Context, o options) (backend.Backend, error) {
	b, err := windows.New(o.managementLibrary, o.releaseLibrary)
	if err != nil {
		return nil, err
	}
	return b, nil
}
