package slcanx

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

func sprintChunk(prefix byte, n int) string {
	return fmt.Sprintf("%c%d", prefix, n)
}

func sprintDecChunk(prefix byte, n uint32) string {
	return fmt.Sprintf("%c%d", prefix, n)
}

// SendNominalBitrate issues the arbitrary-bitrate command ("y<decimal>",
// spec.md §6) directly, bypassing the indexed S<idx> table Open uses.
// bps must be in 5000..1000000.
func (c *Channel) SendNominalBitrate(ctx context.Context, bps uint32) error {
	if bps < 5_000 || bps > 1_000_000 {
		return ErrInvalidConfig
	}
	return c.sendCommand(ctx, buildCommand(c.index, sprintDecChunk('y', bps)))
}

// SendCustomTiming issues the custom-timing command ("a..." / "A...",
// spec.md §6): six underscore-separated integer fields
// clock/prop-seg/phase-seg1/phase-seg2/SJW/TDC-offset. dataPhase selects
// the 'A' (data phase) variant over 'a' (nominal phase).
func (c *Channel) SendCustomTiming(ctx context.Context, t CustomTiming, dataPhase bool) error {
	letter := byte('a')
	if dataPhase {
		letter = 'A'
	}
	fields := []uint32{t.Clock, t.Prop, t.Seg1, t.Seg2, t.SJW, t.TDCOffs}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = strconv.FormatUint(uint64(f), 10)
	}
	chunk := string(letter) + strings.Join(parts, "_")
	return c.sendCommand(ctx, buildCommand(c.index, chunk))
}

// SendLegacyBTR issues the legacy bit-timing register command ("b<hex>",
// spec.md §6). reg must encode to at most 8 hex characters.
func (c *Channel) SendLegacyBTR(ctx context.Context, reg uint32) error {
	hex := fmt.Sprintf("%x", reg)
	if len(hex) > 8 {
		return ErrInvalidConfig
	}
	return c.sendCommand(ctx, buildCommand(c.index, "b"+hex))
}

// QueryNominal issues the nominal bitrate query ("q", spec.md §6) and
// returns the reply line verbatim.
func (c *Channel) QueryNominal(ctx context.Context) (string, error) {
	return c.query(ctx, 'q', "q")
}

// QueryDataRate issues the FD data-rate query ("Q", spec.md §6) and
// returns the reply line verbatim.
func (c *Channel) QueryDataRate(ctx context.Context) (string, error) {
	return c.query(ctx, 'Q', "Q")
}

// QueryIdentifier issues the device UUID/identifier query ("N", spec.md
// §6) and returns the reply line verbatim.
func (c *Channel) QueryIdentifier(ctx context.Context) (string, error) {
	return c.query(ctx, 'N', "N")
}
