package domain

import "fmt"

const (
	AxisValgrind = "valgrind"
	AxisASan     = "asan"
	AxisCoverage = "coverage"
	AxisVersion  = "version"
	AxisTopology = "topology"
	AxisAuth     = "auth"
	AxisSASL     = "sasl"
	AxisSSL      = "ssl"
)

const (
	SSLOpenSSL Value = "openssl"
	SSLDarwin  Value = "darwinssl"
	SSLWindows Value = "winssl"

	SASLCyrus Value = "sasl"
	SASLSSPI  Value = "sspi"

	TopologyServer     Value = "server"
	TopologyReplicaSet Value = "replica_set"
	TopologySharded    Value = "sharded_cluster"

	VersionLatest Value = "latest"
)

// DefaultServerVersions lists the server releases the matrix tests against.
func DefaultServerVersions() []Value {
	return []Value{VersionLatest, "4.0", "3.6", "3.4", "3.2", "3.0"}
}

// IntegrationAxisSpace is the axis space of the integration test family.
// Axis order fixes both enumeration order and name token order.
func IntegrationAxisSpace(versions []Value) (AxisSpace, error) {
	if versions == nil {
		versions = DefaultServerVersions()
	}
	return NewAxisSpace(
		BoolAxis(AxisValgrind),
		BoolAxis(AxisASan),
		BoolAxis(AxisCoverage),
		Axis{Name: AxisVersion, Values: versions},
		Axis{Name: AxisTopology, Values: []Value{TopologyServer, TopologyReplicaSet, TopologySharded}},
		BoolAxis(AxisAuth),
		Axis{Name: AxisSASL, Values: []Value{SASLCyrus, SASLSSPI, Absent}},
		Axis{Name: AxisSSL, Values: []Value{SSLOpenSSL, SSLDarwin, SSLWindows, Absent}},
	)
}

// IntegrationTask is one cell of the integration matrix.
type IntegrationTask struct {
	Valgrind Value
	ASan     Value
	Coverage Value
	Version  Value
	Topology Value
	Auth     Value
	SASL     Value
	SSL      Value
}

var integrationFields = map[string]func(*IntegrationTask) *Value{
	AxisValgrind: func(t *IntegrationTask) *Value { return &t.Valgrind },
	AxisASan:     func(t *IntegrationTask) *Value { return &t.ASan },
	AxisCoverage: func(t *IntegrationTask) *Value { return &t.Coverage },
	AxisVersion:  func(t *IntegrationTask) *Value { return &t.Version },
	AxisTopology: func(t *IntegrationTask) *Value { return &t.Topology },
	AxisAuth:     func(t *IntegrationTask) *Value { return &t.Auth },
	AxisSASL:     func(t *IntegrationTask) *Value { return &t.SASL },
	AxisSSL:      func(t *IntegrationTask) *Value { return &t.SSL },
}

// Get reads an axis value by name.
func (t IntegrationTask) Get(axis string) (Value, bool) {
	field, ok := integrationFields[axis]
	if !ok {
		return Absent, false
	}
	return *field(&t), true
}

// BindIntegration builds an IntegrationTask from an assignment covering
// exactly the integration axes.
func BindIntegration(a Assignment) (IntegrationTask, error) {
	var task IntegrationTask
	if err := bind(a, integrationFields, func(axis string) *Value { return integrationFields[axis](&task) }); err != nil {
		return IntegrationTask{}, fmt.Errorf("integration task: %w", err)
	}
	return task, nil
}

func bind[T any](a Assignment, fields map[string]T, target func(string) *Value) error {
	seen := make(map[string]struct{}, len(a))
	for _, b := range a {
		if _, ok := fields[b.Axis]; !ok {
			return fmt.Errorf("unknown axis %q", b.Axis)
		}
		if _, ok := seen[b.Axis]; ok {
			return fmt.Errorf("axis %q bound twice", b.Axis)
		}
		seen[b.Axis] = struct{}{}
		*target(b.Axis) = b.Value
	}
	for axis := range fields {
		if _, ok := seen[axis]; !ok {
			return fmt.Errorf("axis %q is not bound", axis)
		}
	}
	return nil
}
