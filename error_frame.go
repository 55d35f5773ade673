package slcanx

// ErrorFrame is the synthetic error/state report handed to a NetSink,
// shaped like a classic SocketCAN error frame: Flags carries the
// class-level CAN_ERR_* bits, Data the CAN_ERR_CRTL_*/CAN_ERR_PROT_*
// detail bytes at the same offsets a SocketCAN consumer would expect.
type ErrorFrame struct {
	Flags uint32
	Data  [8]byte
}

// Class-level error flags (bit positions of a SocketCAN error can_id).
const (
	ErrCtrl     uint32 = 0x00000004
	ErrProt     uint32 = 0x00000008
	ErrAck      uint32 = 0x00000020
	ErrBusError uint32 = 0x00000080
	ErrCnt      uint32 = 0x00000200
)

// Controller status detail bits, stored at Data[1].
const (
	CtrlRxOverflow byte = 0x01
	CtrlTxOverflow byte = 0x02
)

// Protocol violation detail bits, stored at Data[2].
const (
	ProtBit   byte = 0x01
	ProtForm  byte = 0x02
	ProtStuff byte = 0x04
	ProtBit0  byte = 0x08
	ProtBit1  byte = 0x10
)

// Error location codes, stored at Data[3].
const (
	ProtLocACK    byte = 0x19
	ProtLocCRCSeq byte = 0x08
)
