// Package wire provides the hardware monitor telemetry frame protocol.
package wire

// The protocol carries one batch of sensor readings per frame from a host
// application to a constrained device over a byte stream (UART, USB-CDC).
//
//   0xAA | 0x01 | N | N x (id, float32 LE) | check LE16 | 0x55
//
// Frames have no sequence numbers and are never acknowledged. A receiver
// recovers from garbage or a dropped byte by waiting for the next start
// marker. The check bytes carry a CRC-16/CCITT over version, count and
// records; verification is optional because older hosts leave them zero.
//
// Producer: host application
// Consumer: display device
