package statemachine

import (
	"fmt"
	"strings"

	"burger-order-api/apperr"
	"burger-order-api/models"
)

// Actor is the role of whoever requests a transition.
type Actor string

const (
	ActorAdmin    Actor = "admin"
	ActorCustomer Actor = "customer"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// happyPath is the linear delivery flow; cancelled sits outside it.
var happyPath = []models.OrderStatus{
	models.StatusPlaced,
	models.StatusPreparing,
	models.StatusPackaging,
	models.StatusOutForDelivery,
	models.StatusDelivered,
}

func rank(s models.OrderStatus) int {
	for i, p := range happyPath {
		if p == s {
			return i
		}
	}
	return -1
}

// Policy holds the configurable parts of the lifecycle.
type Policy struct {
	// AllowSkipAhead lets admins jump forward past intermediate states.
	AllowSkipAhead bool
	// CustomerCancelCutoff is the first status at which a customer can no
	// longer cancel.
	CustomerCancelCutoff models.OrderStatus
}

func DefaultPolicy() Policy {
	return Policy{
		AllowSkipAhead:       true,
		CustomerCancelCutoff: models.StatusOutForDelivery,
	}
}

func (p Policy) Validate() error {
	r := rank(p.CustomerCancelCutoff)
	if r <= 0 {
		return fmt.Errorf("customer cancel cutoff must be one of preparing, packaging, out-for-delivery, delivered; got %q", p.CustomerCancelCutoff)
	}
	return nil
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

// Machine is the authoritative order lifecycle for one policy.
type Machine struct {
	policy      Policy
	transitions []Transition
	index       map[transitionKey]bool
}

func New(p Policy) (*Machine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{policy: p, index: make(map[transitionKey]bool)}
	m.transitions = buildTransitions(p)
	for _, t := range m.transitions {
		m.index[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m, nil
}

func buildTransitions(p Policy) []Transition {
	var out []Transition
	cutoff := rank(p.CustomerCancelCutoff)
	for i, from := range happyPath {
		if from.Terminal() {
			continue
		}
		for j := i + 1; j < len(happyPath); j++ {
			if j > i+1 && !p.AllowSkipAhead {
				break
			}
			out = append(out, Transition{From: from, To: happyPath[j], Actor: ActorAdmin})
		}
		out = append(out, Transition{From: from, To: models.StatusCancelled, Actor: ActorAdmin})
		if i < cutoff {
			out = append(out, Transition{From: from, To: models.StatusCancelled, Actor: ActorCustomer})
		}
	}
	return out
}

func (m *Machine) Policy() Policy {
	return m.policy
}

// Transitions returns the full state machine for documentation
func (m *Machine) Transitions() []Transition {
	return m.transitions
}

// ValidTransitionsFrom returns all states the actor may move to from status
func (m *Machine) ValidTransitionsFrom(status models.OrderStatus, actor Actor) []models.OrderStatus {
	var nexts []models.OrderStatus
	for _, t := range m.transitions {
		if t.From == status && t.Actor == actor {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// Check validates a set-status request. Requesting the current status is
// accepted as a no-op.
func (m *Machine) Check(from, to models.OrderStatus, actor Actor) error {
	if !to.Valid() {
		return apperr.InvalidStatus("invalid status %q", to)
	}
	if from == to {
		return nil
	}
	if m.index[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return apperr.InvalidStatus(
		"invalid transition: %s → %s is not allowed for actor '%s'. Valid transitions from %s are: %s",
		from, to, actor, from, m.describeValidFrom(from, actor),
	)
}

// Cancel validates the cancellation flow. Unlike Check, cancelling an
// order that is already terminal is an error.
func (m *Machine) Cancel(from models.OrderStatus, actor Actor) error {
	if from.Terminal() {
		return apperr.InvalidStatus("order is already %s and cannot be cancelled", from)
	}
	if m.index[transitionKey{From: from, To: models.StatusCancelled, Actor: actor}] {
		return nil
	}
	return apperr.InvalidStatus("order can no longer be cancelled once it is %s", from)
}

func (m *Machine) describeValidFrom(status models.OrderStatus, actor Actor) string {
	nexts := m.ValidTransitionsFrom(status, actor)
	if len(nexts) == 0 {
		return "none"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
