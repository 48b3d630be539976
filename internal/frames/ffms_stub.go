//go:build !ffms2

package frames

import (
	"fmt"

	serrors "github.com/five82/shotcut/internal/errors"
)

// OpenFFMS reports that this binary was built without FFMS2 support.
// Rebuild with -tags ffms2 to enable it.
func OpenFFMS(path string) (Source, error) {
	return nil, serrors.NewUnreadableMediaError(path, "ffms2 backend unavailable",
		fmt.Errorf("built without the ffms2 tag"))
}
