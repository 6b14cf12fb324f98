package domain

import "fmt"

// AuthAxisSpace is the axis space of the authentication test family.
func AuthAxisSpace() (AxisSpace, error) {
	return NewAxisSpace(
		Axis{Name: AxisSASL, Values: []Value{SASLCyrus, SASLSSPI, Absent}},
		Axis{Name: AxisSSL, Values: []Value{SSLOpenSSL, SSLDarwin, SSLWindows}},
	)
}

// AuthTask is one cell of the authentication test matrix.
type AuthTask struct {
	SASL Value
	SSL  Value
}

var authFields = map[string]func(*AuthTask) *Value{
	AxisSASL: func(t *AuthTask) *Value { return &t.SASL },
	AxisSSL:  func(t *AuthTask) *Value { return &t.SSL },
}

func (t AuthTask) Get(axis string) (Value, bool) {
	field, ok := authFields[axis]
	if !ok {
		return Absent, false
	}
	return *field(&t), true
}

func BindAuth(a Assignment) (AuthTask, error) {
	var task AuthTask
	if err := bind(a, authFields, func(axis string) *Value { return authFields[axis](&task) }); err != nil {
		return AuthTask{}, fmt.Errorf("auth task: %w", err)
	}
	return task, nil
}
