package host

// Dispatcher is an in-memory EventTarget. Hosts without a native event system embed it in their
// elements and call Dispatch from their input callbacks.
type Dispatcher struct {
	nextID    int
	listeners map[EventKind][]dispatchEntry
}

type dispatchEntry struct {
	id int
	fn Listener
}

var _ EventTarget = &Dispatcher{}

func (d *Dispatcher) AddEventListener(kind EventKind, fn Listener) func() {
	if d.listeners == nil {
		d.listeners = make(map[EventKind][]dispatchEntry)
	}
	d.nextID++
	id := d.nextID
	d.listeners[kind] = append(d.listeners[kind], dispatchEntry{id: id, fn: fn})
	return func() {
		entries := d.listeners[kind]
		for i, e := range entries {
			if e.id == id {
				d.listeners[kind] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to every listener registered for ev.Kind, in registration order.
// Listeners added or removed during dispatch take effect on the next event.
//
// Parameters:
//   - ev: the event to deliver
func (d *Dispatcher) Dispatch(ev Event) {
	entries := append([]dispatchEntry(nil), d.listeners[ev.Kind]...)
	for _, e := range entries {
		e.fn(ev)
	}
}

// Len returns the number of listeners registered for a kind.
func (d *Dispatcher) Len(kind EventKind) int {
	return len(d.listeners[kind])
}

// Total returns the number of listeners registered across all kinds.
func (d *Dispatcher) Total() int {
	n := 0
	for _, entries := range d.listeners {
		n += len(entries)
	}
	return n
}
