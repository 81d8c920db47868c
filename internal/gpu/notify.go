package gpu

import "sync"

// DeviceNotify is implemented by owners of device-dependent resources.
type DeviceNotify interface {
	// OnDeviceLost is called when resources must be released.
	OnDeviceLost()
	// OnDeviceRestored is called when resources may be recreated.
	OnDeviceRestored()
}

// Notifier fans device events out to registered listeners. The zero value
// is ready to use.
type Notifier struct {
	mu        sync.Mutex
	next      uint64
	listeners map[uint64]DeviceNotify
	order     []uint64
}

// Register subscribes n and returns the function that unsubscribes it.
// Calling the returned function more than once is harmless.
func (n *Notifier) Register(l DeviceNotify) (unregister func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listeners == nil {
		n.listeners = make(map[uint64]DeviceNotify)
	}
	id := n.next
	n.next++
	n.listeners[id] = l
	n.order = append(n.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.listeners, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// snapshot copies the listeners in registration order so callbacks run
// without the lock held.
func (n *Notifier) snapshot() []DeviceNotify {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]DeviceNotify, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.listeners[id])
	}
	return out
}

// NotifyLost delivers OnDeviceLost in registration order.
func (n *Notifier) NotifyLost() {
	for _, l := range n.snapshot() {
		l.OnDeviceLost()
	}
}

// NotifyRestored delivers OnDeviceRestored in registration order.
func (n *Notifier) NotifyRestored() {
	for _, l := range n.snapshot() {
		l.OnDeviceRestored()
	}
}
