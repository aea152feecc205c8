package viewer

// Gesture identifies which pointer interaction is in progress.
type Gesture int

const (
	GestureIdle Gesture = iota
	GestureDragging
	GesturePinching
)

func (g Gesture) String() string {
	switch g {
	case GestureDragging:
		return "dragging"
	case GesturePinching:
		return "pinching"
	default:
		return "idle"
	}
}

// Button identifies the mouse button that started a pointer gesture.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
	ButtonTertiary
)

// Cursor is the pointer shape the viewer asks the host to display.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorGrab
	CursorGrabbing
)

func (c Cursor) String() string {
	switch c {
	case CursorGrab:
		return "grab"
	case CursorGrabbing:
		return "grabbing"
	default:
		return "default"
	}
}

// gestureState holds the anchors of the active gesture. Only the fields of
// the current kind are meaningful; switching kind always starts from a
// zero value.
type gestureState struct {
	kind Gesture

	// Dragging: pointer offset minus translate at gesture start.
	startX, startY float64

	// Pinching
	startDistance float64
	initialScale  float64
}

func dragFrom(x, y float64) gestureState {
	return gestureState{kind: GestureDragging, startX: x, startY: y}
}

func pinchFrom(distance, scale float64) gestureState {
	return gestureState{kind: GesturePinching, startDistance: distance, initialScale: scale}
}
