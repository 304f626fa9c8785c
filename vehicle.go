package pathnet

import (
	"fmt"
	"strings"
)

// VehicleType is a traversal category. Its value is the bit position in a
// VehicleMask.
type VehicleType int

const (
	Car VehicleType = iota
	Bus
	Coach
	LightTruck
	HeavyTruck
	Trolleybus
	Tram
	Taxi

	vehicleTypeCount
)

var vehicleTypeNames = [...]string{
	Car:        "Car",
	Bus:        "Bus",
	Coach:      "Coach",
	LightTruck: "LightTruck",
	HeavyTruck: "HeavyTruck",
	Trolleybus: "Trolleybus",
	Tram:       "Tram",
	Taxi:       "Taxi",
}

func (t VehicleType) String() string {
	if t < 0 || t >= vehicleTypeCount {
		return fmt.Sprintf("VehicleType(%d)", int(t))
	}
	return vehicleTypeNames[t]
}

// Mask returns the single-bit mask for t.
func (t VehicleType) Mask() VehicleMask {
	return VehicleMask(1) << uint(t)
}

// ParseVehicleType matches a type name case-insensitively.
func ParseVehicleType(name string) (VehicleType, error) {
	for i, n := range vehicleTypeNames {
		if strings.EqualFold(n, name) {
			return VehicleType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVehicleType, name)
}

// VehicleMask is a bitset over vehicle types.
type VehicleMask uint32

const (
	MaskNone VehicleMask = 0

	MaskCar        = VehicleMask(1 << Car)
	MaskBus        = VehicleMask(1 << Bus)
	MaskCoach      = VehicleMask(1 << Coach)
	MaskLightTruck = VehicleMask(1 << LightTruck)
	MaskHeavyTruck = VehicleMask(1 << HeavyTruck)
	MaskTrolleybus = VehicleMask(1 << Trolleybus)
	MaskTram       = VehicleMask(1 << Tram)
	MaskTaxi       = VehicleMask(1 << Taxi)

	MaskAll             = MaskCar | MaskBus | MaskCoach | MaskLightTruck | MaskHeavyTruck | MaskTrolleybus | MaskTram | MaskTaxi
	MaskPublicTransport = MaskBus | MaskTrolleybus | MaskTram | MaskTaxi
)

// Allows reports whether t belongs to the mask.
func (m VehicleMask) Allows(t VehicleType) bool {
	return TypeBelongsToMask(t, m)
}

// TypeBelongsToMask is the bit test (1 << t) & mask != 0.
func TypeBelongsToMask(t VehicleType, mask VehicleMask) bool {
	if t < 0 || t >= 32 {
		return false
	}
	return (VehicleMask(1)<<uint(t))&mask != 0
}

func (m VehicleMask) String() string {
	switch m {
	case MaskNone:
		return "None"
	case MaskAll:
		return "All"
	case MaskPublicTransport:
		return "PublicTransport"
	}

	var names []string
	for t := VehicleType(0); t < vehicleTypeCount; t++ {
		if m.Allows(t) {
			names = append(names, t.String())
		}
	}
	if rest := m &^ MaskAll; rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// ParseVehicleMask accepts "All", "None", "PublicTransport" or type names
// joined by '|' or ','.
func ParseVehicleMask(s string) (VehicleMask, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "all":
		return MaskAll, nil
	case "none":
		return MaskNone, nil
	case "publictransport":
		return MaskPublicTransport, nil
	}

	var mask VehicleMask
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		t, err := ParseVehicleType(strings.TrimSpace(part))
		if err != nil {
			return MaskNone, err
		}
		mask |= t.Mask()
	}
	return mask, nil
}
