package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/binaryphile/nsf2wav/internal/convert"
)

// maskValue appends an OpMask for every -m occurrence so -m, -r and -u
// keep their command-line order.
type maskValue struct {
	ops *convert.MaskOps
}

func (v maskValue) String() string { return "" }
func (v maskValue) Type() string   { return "slot" }

func (v maskValue) Set(s string) error {
	slot, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("channel slot %q is not a number", s)
	}
	if slot < 0 || slot >= convert.MaxChannelWidth {
		return fmt.Errorf("channel slot %d out of range 0..%d", slot, convert.MaxChannelWidth-1)
	}
	*v.ops = append(*v.ops, convert.MaskOp{Kind: convert.OpMask, Slot: slot})
	return nil
}

// opValue is an argument-less flag that records kind each time it is
// given.
type opValue struct {
	ops  *convert.MaskOps
	kind convert.MaskOpKind
}

func (v opValue) String() string   { return "false" }
func (v opValue) Type() string     { return "bool" }
func (v opValue) IsBoolFlag() bool { return true }

func (v opValue) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*v.ops = append(*v.ops, convert.MaskOp{Kind: v.kind})
	}
	return nil
}

// addMaskFlags registers -m, -r and -u against one shared op list.
func addMaskFlags(fs *pflag.FlagSet, ops *convert.MaskOps) {
	fs.VarP(maskValue{ops: ops}, "mask", "m",
		"Mute a channel slot (2A03 Pulse 1 = 0) by masking; repeatable")
	fs.VarPF(opValue{ops: ops, kind: convert.OpReverse}, "mask_reverse", "r",
		"Invert the masking so far, soloing instead of muting").NoOptDefVal = "true"
	fs.VarPF(opValue{ops: ops, kind: convert.OpMute}, "mute", "u",
		"Use the masking set so far as muting and reset the mask").NoOptDefVal = "true"
}

// maxSlot is the highest slot named by an -m flag, or -1.
func maxSlot(ops convert.MaskOps) int {
	high := -1
	for _, op := range ops {
		if op.Kind == convert.OpMask && op.Slot > high {
			high = op.Slot
		}
	}
	return high
}
