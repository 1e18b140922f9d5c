package stochsim

import (
	"fmt"
	"strconv"
	"strings"
)

// PropStateSize is the sentinel index for a whole-state request: instead of
// a basis-state probability the trajectory records the engine's state-size
// scalar (node count for a decision diagram).
const PropStateSize = -1

// stateSizeLabel keys the sentinel request in result maps.
const stateSizeLabel = "state_size"

/*
RecordedProperty is one property to sample during every trajectory. Index is
a basis-state index (labelled with its bitstring) or PropStateSize. OpIndex
is the operation count at which the trajectory records the value; requests
parsed from a descriptor are keyed to the final operation.

The request list is parsed once before any trajectory starts, validated
against the qubit count during the perfect run, and shared read-only.
*/
type RecordedProperty struct {
	Index   int64
	Label   string
	OpIndex int
}

/*
parseRecordedProperties parses a descriptor into a request list. The grammar
is comma-separated tokens, each either a single basis-state index ("3"), an
inclusive range ("0-3"), or the sentinel "-1". Whitespace around tokens is
ignored. Labels for basis indices are their nqubits-wide bitstrings.
*/
func parseRecordedProperties(descriptor string, nqubits, nops int) ([]RecordedProperty, error) {
	var props []RecordedProperty
	for _, token := range strings.Split(descriptor, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		// A '-' after the first character separates a range; a leading '-'
		// belongs to a sentinel.
		if sep := strings.Index(token[1:], "-"); sep >= 0 {
			lo, err := strconv.ParseInt(token[:sep+1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProperty, token)
			}
			hi, err := strconv.ParseInt(token[sep+2:], 10, 64)
			if err != nil || hi < lo || lo < 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProperty, token)
			}
			for i := lo; i <= hi; i++ {
				props = append(props, newBasisProperty(i, nqubits, nops))
			}
			continue
		}

		index, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProperty, token)
		}
		switch {
		case index == PropStateSize:
			props = append(props, RecordedProperty{
				Index:   PropStateSize,
				Label:   stateSizeLabel,
				OpIndex: nops,
			})
		case index < 0:
			return nil, fmt.Errorf("%w: %q", ErrInvalidProperty, token)
		default:
			props = append(props, newBasisProperty(index, nqubits, nops))
		}
	}
	return props, nil
}

// allBasisProperties requests every basis state of an nqubits register, the
// default when no descriptor is configured.
func allBasisProperties(nqubits, nops int) []RecordedProperty {
	props := make([]RecordedProperty, 0, 1<<nqubits)
	for i := int64(0); i < int64(1)<<nqubits; i++ {
		props = append(props, newBasisProperty(i, nqubits, nops))
	}
	return props
}

func newBasisProperty(index int64, nqubits, nops int) RecordedProperty {
	return RecordedProperty{Index: index, Label: basisLabel(index, nqubits), OpIndex: nops}
}

// basisLabel renders a basis index as a bitstring, qubit 0 first, matching
// the order in which the final measurement appends classical bits.
func basisLabel(index int64, nqubits int) string {
	bits := make([]byte, nqubits)
	for q := 0; q < nqubits; q++ {
		bits[q] = '0' + byte((index>>q)&1)
	}
	return string(bits)
}
