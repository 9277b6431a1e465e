package generate

import "fmt"

// Shape is the call pattern of a method, fixed by its two streaming flags.
type Shape int

const (
	ShapeUnary Shape = iota
	ShapeClientStreaming
	ShapeServerStreaming
	ShapeBidiStreaming
)

var Shapes = []Shape{ShapeUnary, ShapeClientStreaming, ShapeServerStreaming, ShapeBidiStreaming}

// SendCount is the number of requests written by client and bidirectional
// streaming probes.
const SendCount = 5

func Classify(clientStreaming, serverStreaming bool) Shape {
	switch {
	case clientStreaming && serverStreaming:
		return ShapeBidiStreaming
	case clientStreaming:
		return ShapeClientStreaming
	case serverStreaming:
		return ShapeServerStreaming
	default:
		return ShapeUnary
	}
}

func (s Shape) String() string {
	switch s {
	case ShapeUnary:
		return "unary"
	case ShapeClientStreaming:
		return "client streaming"
	case ShapeServerStreaming:
		return "server streaming"
	case ShapeBidiStreaming:
		return "bidirectional streaming"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}
