package ltime

import (
	"pgregory.net/rapid"
	"time"
)

var pollIntervals = []string{
	"100ms",
	"1s",
	"15s",
	"1m",
}

var intervalSampler *rapid.Generator[time.Duration]

func init() {
	intervalGenerators := make([]*rapid.Generator[time.Duration], 0)
	for _, d := range pollIntervals {
		parsed, err := time.ParseDuration(d)
		if err != nil {
			panic(err)
		}
		intervalGenerators = append(intervalGenerators, rapid.Just(parsed))
	}
	intervalSampler = rapid.OneOf(intervalGenerators...)
}

func TestingIntervalGenerator() *rapid.Generator[time.Duration] {
	return intervalSampler
}
