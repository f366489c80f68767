package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-ambidelay/dsp/filter/design"
)

func ExampleLowpass() {
	c := design.Lowpass(1000, design.ButterworthQ, 48000)
	fmt.Printf("%.2f dB at cutoff\n", c.MagnitudeDB(1000, 48000))

	// Output:
	// -3.01 dB at cutoff
}
