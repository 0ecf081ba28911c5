package rig

// Event types describe host input routed through a Bus. Using rig events
// decouples components from the host handler signatures.

// EventVehicleEnter is published when a rider attempts to mount a vehicle.
// Cancelling it suppresses the host's native mount.
type EventVehicleEnter struct {
	Vehicle Handle
	Rider   Handle

	cancelled bool
}

// Cancel suppresses the native mount.
func (e *EventVehicleEnter) Cancel() { e.cancelled = true }

// Cancelled reports whether a listener cancelled the event.
func (e *EventVehicleEnter) Cancelled() bool { return e.cancelled }

// EventInteract is published when a player interacts with an object without
// mounting it.
type EventInteract struct {
	Target Handle
	Actor  Handle

	// Sneaking is the actor's stance at the time of the interaction.
	Sneaking bool
	// EmptyHand is true if the actor holds nothing in the interacting hand.
	EmptyHand bool
	// HoldingSaddle is true if the actor holds a saddle in the interacting hand.
	HoldingSaddle bool
	// OffHand is true for off-hand interactions.
	OffHand bool

	cancelled bool
}

// Cancel suppresses the host's default interaction.
func (e *EventInteract) Cancel() { e.cancelled = true }

// Cancelled reports whether a listener cancelled the event.
func (e *EventInteract) Cancelled() bool { return e.cancelled }

// EventDismount is published when a rider leaves its vehicle.
type EventDismount struct {
	Vehicle Handle
	Rider   Handle
}
