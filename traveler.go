package pathnet

import "fmt"

// Traveler moves a vehicle along the network, choosing a random admissible
// continuation whenever it runs off the end of its current path.
type Traveler struct {
	network     *Network
	path        *Path
	along       float64
	vehicleType VehicleType
}

// NewTraveler places a vehicle at the start of path.
func NewTraveler(network *Network, path *Path, vehicleType VehicleType) (*Traveler, error) {
	if !path.IsValid() {
		return nil, fmt.Errorf("traveler on %s: %w", path, ErrInvalidPath)
	}
	return &Traveler{network: network, path: path, vehicleType: vehicleType}, nil
}

func (t *Traveler) Path() *Path { return t.path }

func (t *Traveler) Along() float64 { return t.along }

func (t *Traveler) VehicleType() VehicleType { return t.vehicleType }

// Position returns the current world position.
func (t *Traveler) Position() Point {
	return t.path.PositionAlong(t.along)
}

// Direction returns the direction of the segment the traveler is on.
func (t *Traveler) Direction() Vec3 {
	seg, _ := t.path.LocateAlong(t.along)
	return t.path.PositionAt(seg + 1).Sub(t.path.PositionAt(seg)).Normalized()
}

// Advance moves distance forward. Distance left over at the end of a path is
// carried onto the next one. If no continuation exists the traveler stops
// at the end of its path and the network's error is returned, so callers
// can tell ErrNoContinuation from ErrNoMatchingType.
func (t *Traveler) Advance(distance float64) error {
	if distance <= 0 {
		return nil
	}

	remaining := t.along + distance
	for remaining > t.path.Length() {
		remaining -= t.path.Length()

		last := End{Path: t.path, IsLast: true}.Node()
		next, err := t.network.NextRandomPathForVehicle(last, t.vehicleType)
		if err != nil {
			t.along = t.path.Length()
			return err
		}
		if !next.IsValid() || next.Length() == 0 {
			t.along = t.path.Length()
			return fmt.Errorf("continuation %s: %w", next, ErrInvalidPath)
		}
		t.path = next
	}

	t.along = remaining
	return nil
}
