package model

// Rescuer is a surface agent (boat) that picks up discovered victims.
type Rescuer struct {
	Entity

	detectionRadius float64
	rescueCapacity  int
	onboard         int
	rescuedCount    int
}

// NewRescuer creates an idle rescuer parked at pos.
func NewRescuer(id string, pos Position, homeStation int, velocity, detectionRadius float64, capacity int) *Rescuer {
	return &Rescuer{
		Entity:          newEntity(id, KindRescuer, pos, velocity, homeStation),
		detectionRadius: detectionRadius,
		rescueCapacity:  capacity,
	}
}

func (r *Rescuer) Base() *Entity { return &r.Entity }
func (r *Rescuer) sealedAgent()  {}

// DetectionRadius returns the pickup / sighting radius.
func (r *Rescuer) DetectionRadius() float64 {
	return r.detectionRadius
}

// RescueCapacity returns how many victims fit on board.
func (r *Rescuer) RescueCapacity() int {
	return r.rescueCapacity
}

// Onboard returns the number of victims currently carried.
func (r *Rescuer) Onboard() int {
	return r.onboard
}

// RescuedCount returns the total number of victims picked up during the run.
func (r *Rescuer) RescuedCount() int {
	return r.rescuedCount
}

// IsFull reports whether no more victims fit on board.
func (r *Rescuer) IsFull() bool {
	return r.onboard >= r.rescueCapacity
}

// TakeAboard records one pickup. Returns false when the rescuer is full.
func (r *Rescuer) TakeAboard() bool {
	if r.IsFull() {
		return false
	}
	r.onboard++
	r.rescuedCount++
	return true
}

// Unload drops everyone off at the station and returns how many left the boat.
func (r *Rescuer) Unload() int {
	n := r.onboard
	r.onboard = 0
	return n
}
