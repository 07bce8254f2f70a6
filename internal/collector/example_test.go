package collector_test

import (
	"fmt"

	"stopsim/internal/collector"
	"stopsim/internal/core"
)

func ExampleSummarize() {
	set := core.NewOutcomeSet(core.Params{Items: 5, Simulations: 1}, 1, []core.Outcome{
		{Position: 2, Value: 0.7, BestPossible: 0.7, IsBest: true},
	})

	s, err := collector.Summarize(set)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("success=%.1f failure=%.1f position=%.0f value rate=%.1f\n",
		s.SuccessRate, s.FailureRate, s.AvgPosition, s.BestValueRate)
	// Output: success=1.0 failure=0.0 position=2 value rate=1.0
}

func ExampleFormatNumber() {
	fmt.Println(collector.FormatNumber(100000))
	// Output: 100,000
}
