package list

// Position is where the cursor of a list stands.
type Position uint8

const (
	// Empty is the only position of a list without items.
	Empty Position = iota
	BeforeStart
	OnFirst
	Interior
	OnLast
	PastEnd
)

var positionNames = [...]string{
	Empty:       "empty",
	BeforeStart: "before-start",
	OnFirst:     "on-first",
	Interior:    "interior",
	OnLast:      "on-last",
	PastEnd:     "past-end",
}

func (p Position) String() string {
	if int(p) < len(positionNames) {
		return positionNames[p]
	}
	return "invalid"
}

// OnItem reports whether the cursor refers to an item.
func (p Position) OnItem() bool {
	return p == OnFirst || p == Interior || p == OnLast
}
