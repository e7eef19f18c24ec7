package pager_test

import (
	"fmt"
	"time"

	"github.com/dshills/swipepane/internal/pager"
)

func Example() {
	e, err := pager.New(3, pager.DefaultParams(), pager.WithIndex(1))
	if err != nil {
		panic(err)
	}

	const width = 300.0
	now := time.Now()

	e.BeginSession(pager.SourceDrag, now)
	offset := e.UpdateOffset(pager.SourceDrag, -80, width)
	changed := e.EndSession(pager.SourceDrag, offset, width, now)

	// A second end signal for the same gesture is ignored.
	again := e.EndSession(pager.SourceDrag, offset, width, now)

	fmt.Println(offset, changed, again, e.Index())
	// Output: -60 true false 2
}
