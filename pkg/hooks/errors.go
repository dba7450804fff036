package hooks

import (
	"fmt"

	"github.com/batrachia/libfetch/pkg/errors"
)

// ErrHookTypeEmpty is returned when a hook type is empty.
var ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")

// ErrUnsupportedHookEvent is returned when an unsupported hook event is used.
func ErrUnsupportedHookEvent(event string) error {
	return errors.Wrapf(errors.ErrHookLoad, "unsupported hook event: %s", event)
}
