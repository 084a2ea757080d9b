// Package cache stores computed reports. Keys carry a per-scope generation
// so a single counter bump invalidates every report of that scope.
package cache

import (
	"context"
	"fmt"
)

// ReportCache is implemented by Redis, LRU and Noop.
type ReportCache interface {
	// Get decodes the value stored under key into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Generation returns the current generation of scope, zero when unset.
	Generation(ctx context.Context, scope string) (int64, error)
	// Bump advances the generation of scope.
	Bump(ctx context.Context, scope string) error
}

func generationKey(scope string) string {
	return fmt.Sprintf("report:gen:%s", scope)
}

// Noop never stores anything.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string, any) (bool, error)    { return false, nil }
func (Noop) Set(context.Context, string, any) error            { return nil }
func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Noop) Bump(context.Context, string) error                { return nil }
