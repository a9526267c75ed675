package neural

import "fmt"

// shapeError is the value panicked with when a buffer does not have the width a layer expects.
// These are programmer errors and are never recovered from inside the package.
type shapeError struct {
	op            string
	expected, got int
}

func (err shapeError) Error() string {
	return fmt.Sprintf("%s: expected width %d, got %d", err.op, err.expected, err.got)
}

func checkWidth(op string, expected, got int) {
	if expected != got {
		panic(shapeError{op: op, expected: expected, got: got})
	}
}
