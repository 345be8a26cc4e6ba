package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kolkov/stgen/internal/stgen/primitive"
	"github.com/kolkov/stgen/internal/stgen/stid"
)

// decodeLine parses one line of the demo primitive-event text format:
//
//	SWAP <tid>
//	LOAD <hex_addr> <size>
//	STORE <hex_addr> <size>
//	IOP
//	FLOP
//	SYNC <kind> <hex_id>
//	INSTR
//
// Blank lines and lines starting with # are skipped (ok=false, err=nil).
// This format is not part of spec.md's external contract — it exists only
// to make the core runnable from a shell without a real instrumentation
// front end.
func decodeLine(s string) (ev primitive.Event, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "#") {
		return primitive.Event{}, false, nil
	}

	fields := strings.Fields(s)
	switch fields[0] {
	case "SWAP":
		tid, err := parseUint(fields, 1)
		if err != nil {
			return ev, false, err
		}
		return primitive.Swap(stid.TID(tid)), true, nil

	case "LOAD", "STORE":
		addr, err := parseHexAddr(fields, 1)
		if err != nil {
			return ev, false, err
		}
		size, err := parseUint(fields, 2)
		if err != nil {
			return ev, false, err
		}
		op := primitive.MemLoad
		if fields[0] == "STORE" {
			op = primitive.MemStore
		}
		return primitive.Event{Kind: primitive.KindMem, MemOp: op, Start: addr, Size: uint(size)}, true, nil

	case "IOP":
		return primitive.Event{Kind: primitive.KindComp, CompOp: primitive.CompIOP}, true, nil

	case "FLOP":
		return primitive.Event{Kind: primitive.KindComp, CompOp: primitive.CompFLOP}, true, nil

	case "SYNC":
		kind, err := parseUint(fields, 1)
		if err != nil {
			return ev, false, err
		}
		id, err := parseHexAddr(fields, 2)
		if err != nil {
			return ev, false, err
		}
		return primitive.Event{Kind: primitive.KindSync, SyncKind: stid.SyncKind(kind), SyncID: id}, true, nil

	case "INSTR":
		return primitive.Event{Kind: primitive.KindCxt, CxtOp: primitive.CxtInstr}, true, nil

	default:
		return ev, false, fmt.Errorf("unrecognized primitive %q", fields[0])
	}
}

func parseUint(fields []string, i int) (uint64, error) {
	if i >= len(fields) {
		return 0, fmt.Errorf("missing field %d", i)
	}
	return strconv.ParseUint(fields[i], 10, 64)
}

func parseHexAddr(fields []string, i int) (stid.Addr, error) {
	if i >= len(fields) {
		return 0, fmt.Errorf("missing field %d", i)
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(fields[i], "0x"), 16, 64)
	if err != nil {
		return 0, err
	}
	return stid.Addr(v), nil
}
