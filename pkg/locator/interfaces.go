package locator

import (
	"context"

	"github.com/batrachia/libfetch/pkg/platform"
)

//go:generate mockgen -destination=./mocks/locator.go . Acquirer

// Acquirer obtains artifacts automatically when no override is set. It returns
// exactly one Artifact per requested kind.
type Acquirer interface {
	Acquire(ctx context.Context, version string, p platform.Platform, kinds []Kind) ([]Artifact, error)
}
