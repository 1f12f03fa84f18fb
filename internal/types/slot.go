package types

// DeliverySlot identifies one future delivery interval of the wholesale
// market. Slots are dense integers assigned by the market; arithmetic on
// them (difference, modulo) is meaningful. No per-slot state exists until
// a slot is first referenced, and slots are retired once delivery passes.
type DeliverySlot int

// SlotOfDay returns the slot's offset within a 24-slot day.
func (s DeliverySlot) SlotOfDay() int {
	return int(s % 24)
}

// SlotOfWeek returns the slot's offset within a 168-slot week.
func (s DeliverySlot) SlotOfWeek() int {
	return int(s % 168)
}
