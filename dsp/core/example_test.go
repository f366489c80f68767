package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-ambidelay/dsp/core"
)

func ExampleApplyProcessorOptions() {
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(44100),
		core.WithBlockSize(256),
		core.WithChannels(4),
	)

	fmt.Printf("sampleRate=%.0f blockSize=%d channels=%d\n", cfg.SampleRate, cfg.BlockSize, cfg.Channels)

	// Output:
	// sampleRate=44100 blockSize=256 channels=4
}

func ExampleDBToGain() {
	fmt.Printf("%.3f %.3f %.3f\n", core.DBToGain(0), core.DBToGain(-60), core.DBToGain(-59.91))

	// Output:
	// 1.000 0.000 0.000
}
