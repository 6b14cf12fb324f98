package constraint

import (
	"fmt"
	"strings"
)

// Decision is the outcome of evaluating a candidate against a policy. A
// disallowed decision names the first rule that rejected the candidate.
type Decision struct {
	Allowed bool
	Rule    string
}

func allowed() Decision {
	return Decision{Allowed: true}
}

func (d Decision) Disallowed() bool {
	return !d.Allowed
}

// Rule is a named cross-axis legality check. Check returns false to reject.
type Rule[T any] struct {
	Name  string
	Check func(T) bool
}

// Policy is the conjunction of a family's rules.
type Policy[T any] struct {
	Family string
	Rules  []Rule[T]
}

func NewPolicy[T any](family string, rules ...Rule[T]) (Policy[T], error) {
	if len(rules) == 0 {
		return Policy[T]{}, fmt.Errorf("%s policy: at least one rule is required", family)
	}
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return Policy[T]{}, fmt.Errorf("%s policy: rules[%d].name is required", family, i)
		}
		if _, ok := seen[name]; ok {
			return Policy[T]{}, fmt.Errorf("%s policy: duplicate rule %q", family, name)
		}
		seen[name] = struct{}{}
		if rule.Check == nil {
			return Policy[T]{}, fmt.Errorf("%s policy: rule %q has no check", family, name)
		}
	}
	return Policy[T]{Family: family, Rules: append([]Rule[T](nil), rules...)}, nil
}

func mustPolicy[T any](family string, rules ...Rule[T]) Policy[T] {
	p, err := NewPolicy(family, rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Evaluate short-circuits on the first failing rule.
func (p Policy[T]) Evaluate(candidate T) Decision {
	for _, rule := range p.Rules {
		if !rule.Check(candidate) {
			return Decision{Allowed: false, Rule: rule.Name}
		}
	}
	return allowed()
}

func (p Policy[T]) Accepts(candidate T) bool {
	return p.Evaluate(candidate).Allowed
}

// RuleNames lists the policy's rules in evaluation order.
func (p Policy[T]) RuleNames() []string {
	out := make([]string, 0, len(p.Rules))
	for _, rule := range p.Rules {
		out = append(out, rule.Name)
	}
	return out
}

// Require holds when cond is true.
func Require(cond bool) bool {
	return cond
}

// Prohibit holds when cond is false.
func Prohibit(cond bool) bool {
	return !cond
}

// BothOrNeither holds when a and b have the same truthiness.
func BothOrNeither(a, b bool) bool {
	return a == b
}

// Implies holds unless cond is true and then is false.
func Implies(cond, then bool) bool {
	return !cond || then
}
