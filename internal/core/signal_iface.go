package core

// SignalConnection abstracts the outbound half of a client transport.
// Owned by the adapter; the adapter must Close() it.
// TrySend must never block: a full queue yields ErrBackpressure.
//
//go:generate mockgen -source=signal_iface.go -destination=mocks/mock_signal.go -package=mocks
type SignalConnection interface {
	TrySend(Event) error
	Close()
}
