package ecs

// Updated is a parallel, empty tag component signalling that C was modified
// during the current frame. Each instantiation of Updated[C] has its own
// distinct ComponentTypeID and storage, registered alongside C's storage by
// CreateStorage[C]. MarkUpdated/ClearUpdateTag (world.go) are the only
// supported way to set or clear it.
type Updated[C any] struct{}

// accessCheckID reports the type an access-check rule should treat this
// component as. Updated[C] answers with C's id rather than its own, so a
// Require/Exclude clause built from Updated[C] gates ObsGet/ObsHas access
// to C itself: a system that reacts to a change can still read the value
// that changed.
func (Updated[C]) accessCheckID() ComponentTypeID { return TypeID[C]() }

// accessCheckAccessor is implemented only by Updated[C]; accessorFor uses
// it to detect the tag and unwrap it without any string-based type
// inspection.
type accessCheckAccessor interface {
	accessCheckID() ComponentTypeID
}
