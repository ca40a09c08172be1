package sw

import (
	"encoding/binary"

	"github.com/flexsw/flexsw/core/events"
)

// SwapStatus is carried in swap-status notifications.
type SwapStatus int

// Swap statuses.
const (
	NewConfigLoaded SwapStatus = 0
	SwapRequested   SwapStatus = 1
	SwapCompleted   SwapStatus = 2
	SwapCancelled   SwapStatus = 3
)

func (st SwapStatus) String() string {
	switch st {
	case NewConfigLoaded:
		return "NEW_CONFIG_LOADED"
	case SwapRequested:
		return "SWAP_REQUESTED"
	case SwapCompleted:
		return "SWAP_COMPLETED"
	case SwapCancelled:
		return "SWAP_CANCELLED"
	}
	return "unknown"
}

// Transport delivers notification messages to the control plane.
// Messages are delivered in order per device; no ordering across devices.
type Transport interface {
	Send(msg []byte) error
}

// swapMsgSize is the fixed frame size of a swap-status notification:
// "SWP|", device id, context id, status, padding.
const swapMsgSize = 4 + 8 + 4 + 4 + 12

// EncodeSwapStatus builds the wire frame of a swap-status notification.
func EncodeSwapStatus(deviceID uint64, cxtID int, status SwapStatus) []byte {
	msg := make([]byte, swapMsgSize)
	copy(msg, "SWP|")
	binary.LittleEndian.PutUint64(msg[4:], deviceID)
	binary.LittleEndian.PutUint32(msg[12:], uint32(cxtID))
	binary.LittleEndian.PutUint32(msg[16:], uint32(status))
	return msg
}

// DecodeSwapStatus parses a swap-status notification frame.
func DecodeSwapStatus(msg []byte) (deviceID uint64, cxtID int, status SwapStatus, ok bool) {
	if len(msg) != swapMsgSize || string(msg[:4]) != "SWP|" {
		return 0, 0, 0, false
	}
	deviceID = binary.LittleEndian.Uint64(msg[4:])
	cxtID = int(binary.LittleEndian.Uint32(msg[12:]))
	status = SwapStatus(binary.LittleEndian.Uint32(msg[16:]))
	return deviceID, cxtID, status, true
}

// TopicSwapStatus is the emitter event of EmitterTransport.
const TopicSwapStatus = "swapStatus"

// EmitterTransport delivers notifications to in-process listeners through an event emitter.
type EmitterTransport struct {
	*events.Emitter
}

// NewEmitterTransport creates an EmitterTransport.
func NewEmitterTransport() *EmitterTransport {
	return &EmitterTransport{Emitter: events.NewEmitter()}
}

// Send implements Transport.
func (t *EmitterTransport) Send(msg []byte) error {
	t.EmitSync(TopicSwapStatus, msg)
	return nil
}
