package captions

// Standard distance from the object center to the near edge of its
// caption.
const (
	offsetLeft   = -10
	offsetRight  = 10
	offsetTop    = 10
	offsetBottom = -10
)

// DefaultPlacement picks the initial caption offset and orientation
// for a marker from its rotation sector and layer kind. Kind 1 is the
// directional sign shape, kind 2 the flag shape; everything else uses
// the generic table.
func DefaultPlacement(objectRotation, objectKind int) (offset [2]int, rotation int) {
	var left, top int
	var needRotate bool
	switch objectKind {
	case 1:
		return placementKind1(objectRotation)
	case 2:
		switch {
		case 31 <= objectRotation && objectRotation <= 149:
			needRotate = true
			top = offsetTop
		case 150 <= objectRotation && objectRotation <= 210:
			left = offsetLeft
		case 211 <= objectRotation && objectRotation <= 329:
			needRotate = true
			top = offsetBottom
		default: // <= 30 or >= 330
			left = offsetRight
		}
	default:
		switch {
		case 31 <= objectRotation && objectRotation <= 149:
			left = offsetRight
		case 150 <= objectRotation && objectRotation <= 210:
			needRotate = true
			top = offsetTop
		case 211 <= objectRotation && objectRotation <= 329:
			left = offsetLeft
		default:
			needRotate = true
			top = offsetBottom
		}
	}
	if needRotate {
		rotation = 90
	}
	return [2]int{left, top}, rotation
}

func placementKind1(objectRotation int) (offset [2]int, rotation int) {
	var left, top int
	var needRotate bool
	switch {
	case 31 <= objectRotation && objectRotation <= 149:
		left = offsetRight
		switch {
		case objectRotation > 105:
			top = offsetTop
		case objectRotation < 75:
			top = offsetBottom
		}
	case 150 <= objectRotation && objectRotation <= 210:
		needRotate = true
		top = offsetTop
		switch {
		case objectRotation < 165:
			left = offsetRight
		case objectRotation > 195:
			left = offsetLeft
		}
	case 211 <= objectRotation && objectRotation <= 329:
		left = offsetLeft
		switch {
		case objectRotation < 255:
			top = offsetTop
		case objectRotation > 285:
			top = offsetBottom
		}
	default: // <= 30 or >= 330
		needRotate = true
		top = offsetBottom
		if objectRotation > 15 {
			left = offsetRight
		}
	}
	if needRotate {
		rotation = 90
	}
	return [2]int{left, top}, rotation
}
