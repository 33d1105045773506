//go:build yowslmock

package yowsl

import (
	"context"

	"github.com/ubuntu/yowsl/internal/backend"
	"github.com/ubuntu/yowsl/internal/backend/windows"
	"github.com/ubuntu/yowsl/mock"
)

type backendQueryType int

const backendQuery backendQueryType = 0

// WithMock adds the mock back-end to the context.
func WithMock(ctx context.Context, m *mock.Backend) context.Context {
	return context.WithValue(ctx, backendQuery, m)
}

func selectBackend(ctx context.Context, o options) (backend.Backend, error) {
	v := ctx.Value(backendQuery)

	if v == nil {
		b, err := windows.New(o.managementLibrary, o.releaseLibrary)
		if err != nil {
			return nil, err
		}
		return b, nil
	}

	//nolint: forcetypeassert // The panic is expected and welcome
	return v.(*mock.Backend), nil
}
