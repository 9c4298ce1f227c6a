package micmac

import "fmt"

// Class is the MICMAC structural role of a node.
type Class uint8

const (
	// Autonomous nodes neither influence nor depend on the rest of the network.
	Autonomous Class = iota
	// Driver nodes influence at least as much as they depend.
	Driver
	// Dependent nodes are influenced but influence nothing.
	Dependent
	// Linkage nodes both influence and depend, with dependence dominating.
	Linkage
)

var classNames = [...]string{
	Autonomous: "Autonomous",
	Driver:     "Driver",
	Dependent:  "Dependent",
	Linkage:    "Linkage",
}

// Classes lists every class in declaration order.
func Classes() []Class { return []Class{Autonomous, Driver, Dependent, Linkage} }

// String returns the class label as written to output tables.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) {
	if int(c) >= len(classNames) {
		return nil, fmt.Errorf("unknown class %d", uint8(c))
	}
	return []byte(classNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(b []byte) error {
	v, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseClass parses a class label.
func ParseClass(s string) (Class, error) {
	for i, name := range classNames {
		if name == s {
			return Class(i), nil
		}
	}
	return Autonomous, fmt.Errorf("unknown class %q", s)
}

// Classify maps an (influence, dependence) pair to its class. Rules apply in
// order:
//
//  1. I > 0 and D > 0: Linkage if D > I, otherwise Driver (ties are Driver)
//  2. I > 0 and D == 0: Driver
//  3. D > 0 and I == 0: Dependent
//  4. otherwise: Autonomous
//
// Zero is compared exactly: a node without edges scores exactly 0 on both.
func Classify(influence, dependence float64) Class {
	switch {
	case influence > 0 && dependence > 0:
		if dependence > influence {
			return Linkage
		}
		return Driver
	case influence > 0 && dependence == 0:
		return Driver
	case dependence > 0 && influence == 0:
		return Dependent
	}
	return Autonomous
}
