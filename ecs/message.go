package ecs

// MessageType tags a message kind in the subscription table.
type MessageType uint16

// Message is anything an entity can Send. Implementations are usually small
// value structs whose MessageType ignores the receiver's fields.
type Message interface {
	MessageType() MessageType
}

type subscription struct {
	target ComponentID
	fn     func(Component, Message)
}

// Subscriptions is the table entities dispatch messages through. It is
// filled while managers are initialized and sealed before the first frame.
type Subscriptions struct {
	table  map[MessageType][]subscription
	sealed bool
}

func newSubscriptions() *Subscriptions {
	return &Subscriptions{table: make(map[MessageType][]subscription)}
}

// Seal freezes the table. Subscribing afterwards panics.
func (s *Subscriptions) Seal() { s.sealed = true }

// Sealed reports whether Seal has been called.
func (s *Subscriptions) Sealed() bool { return s.sealed }

// Len is the number of subscriptions registered for t.
func (s *Subscriptions) Len(t MessageType) int { return len(s.table[t]) }

// Subscribe registers fn for messages of type M delivered to components
// managed by m.
func Subscribe[T any, PT interface {
	*T
	Component
}, M Message](s *Subscriptions, m *Manager[T, PT], fn func(PT, M)) {
	if s.sealed {
		panic("ecs: subscribe after the subscription table was sealed")
	}

	var zero M
	t := zero.MessageType()
	s.table[t] = append(s.table[t], subscription{
		target: m.ID(),
		fn: func(c Component, msg Message) {
			fn(c.(PT), msg.(M))
		},
	})
}

func (s *Subscriptions) dispatch(e *Entity, msg Message) {
	for _, sub := range s.table[msg.MessageType()] {
		if !e.Has(sub.target) {
			continue
		}
		for _, c := range e.components {
			if c.TypeID() == sub.target {
				sub.fn(c, msg)
			}
		}
	}
}
