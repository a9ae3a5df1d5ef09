package spidma

// Event is a notification raised by the transfer hardware.
type Event uint8

const (
	// EventTransferComplete fires when the armed transfer has been fully
	// handed to the bus.
	EventTransferComplete Event = iota
	// EventFault fires when the transfer engine reports a bus error.
	EventFault
)

func (ev Event) String() string {
	switch ev {
	case EventTransferComplete:
		return "transfer-complete"
	case EventFault:
		return "fault"
	}
	return "unknown"
}

// Transfer describes one DMA transfer from memory to the bus data register.
// When Increment is false every one of the Count bytes is read from Src[0].
type Transfer struct {
	Src       []byte
	Count     int
	Increment bool
}

// Handler receives hardware notifications. Handle is called from interrupt
// context and must not block.
type Handler interface {
	Handle(Event)
}

// Channel is the platform side of the streaming engine: a serial bus fed by
// a DMA channel.
type Channel interface {
	// Configure brings up the bus and transfer engine and routes its
	// notifications to h. No transfer is started.
	Configure(h Handler) error
	// Start loads the transfer descriptor and enables the channel.
	Start(Transfer)
	// Busy reports whether a transfer is still in flight.
	Busy() bool
	// AckFault returns the pending fault status and clears it.
	// A zero status means there was no fault.
	AckFault() uint32
	// Disable aborts any transfer and stops notifications.
	Disable()
}

// Drainer is implemented by channels whose Disable returns while the last
// transfer may still be on the bus. Drain blocks until the bus is idle and no
// further notification can be raised. It must not be called from the Handler.
type Drainer interface {
	Drain()
}
