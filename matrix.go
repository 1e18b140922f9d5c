package stochsim

import "math"

// GateMatrix is a dense 2x2 complex matrix in row-major order:
// {m00, m01, m10, m11}. Small enough to pass by value everywhere.
type GateMatrix [4]complex128

var (
	MatID = GateMatrix{1, 0, 0, 1}
	MatX  = GateMatrix{0, 1, 1, 0}
	MatY  = GateMatrix{0, -1i, 1i, 0}
	MatZ  = GateMatrix{1, 0, 0, -1}
	MatH  = GateMatrix{
		complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
		complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
	}
	MatS = GateMatrix{1, 0, 0, 1i}
	MatT = GateMatrix{1, 0, 0, complex(1/math.Sqrt2, 1/math.Sqrt2)}
)
