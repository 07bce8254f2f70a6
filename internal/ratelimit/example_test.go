package ratelimit_test

import (
	"fmt"

	"stopsim/internal/core"
	"stopsim/internal/ratelimit"
)

func ExampleNewReporter() {
	forwarded := 0
	r := ratelimit.NewReporter(core.ReporterFunc(func(core.Progress) { forwarded++ }), 1)

	for i := 1; i <= 1000; i++ {
		r.Report(core.Progress{Completed: i, Total: 1000})
	}

	fmt.Printf("forwarded %d of 1000 updates\n", forwarded)
	// Output: forwarded 2 of 1000 updates
}
