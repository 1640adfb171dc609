package network_test

import (
	"fmt"

	"github.com/matzehuels/rfit/pkg/core/network"
)

func ExampleParallelCavity() {
	// 2x6 studs (R-6.875) at 20% framing; films plus fixed layers sum to R-1.98.
	cavity := network.ParallelCavity(13.0, 1.98, 0.20, 6.875)
	fmt.Printf("cavity R-%.2f\n", cavity)

	// The forward form reproduces the target.
	fmt.Printf("assembly R-%.2f\n", network.ParallelCavityR(cavity, 1.98, 0.20, 6.875))
	// Output:
	// cavity R-12.74
	// assembly R-13.00
}

func ExampleParallelR() {
	r := network.ParallelR([]network.Path{
		{Fraction: 0.25, R: 8.0},
		{Fraction: 0.75, R: 16.0},
	})
	fmt.Printf("R-%.2f\n", r)
	// Output:
	// R-12.80
}

func ExampleSeries() {
	fmt.Printf("R-%.2f\n", network.Series(20.0, 2.5))
	// Output:
	// R-17.50
}
