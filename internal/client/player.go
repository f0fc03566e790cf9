package client

// Player is the control surface of the local media handle, whichever
// variant backs it (embedded player or direct media element).
type Player interface {
	Seek(position float64)
	Play()
	Pause()
	CurrentPosition() float64
}
