// Package naming formats and parses the names of generated material nodes.
//
// Every layer and mask owns exactly one group node in the material tree and one
// node group (subgraph) that backs it. Both carry the same name, derived from the
// material name and the entry's stack position:
//
//	layer: "{material}_{layer}"          e.g. "Metal_0"
//	mask:  "{material}_{layer}_{mask}"   e.g. "Metal_0_2"
//
// A node that has been created but not yet committed to its final position carries
// the provisional suffix "~" (see [Provisional]).
//
// Names are the only handle the layer engine uses to find a node again, so the
// formatting is injective for a fixed material: distinct (layer, mask) pairs never
// produce the same string, and a layer name never equals a mask name.
package naming

import (
	"strconv"
	"strings"
)

// ProvisionalSuffix marks a node whose name has not been finalized.
const ProvisionalSuffix = "~"

const sep = "_"

// LayerName returns the name of the group node for a material layer.
func LayerName(material string, layer int) string {
	return material + sep + strconv.Itoa(layer)
}

// MaskName returns the name of the group node for a layer mask.
func MaskName(material string, layer, mask int) string {
	return material + sep + strconv.Itoa(layer) + sep + strconv.Itoa(mask)
}

// Provisional returns name with the provisional suffix appended.
func Provisional(name string) string {
	return name + ProvisionalSuffix
}

// IsProvisional reports whether name carries the provisional suffix.
func IsProvisional(name string) bool {
	return strings.HasSuffix(name, ProvisionalSuffix)
}

// Parsed holds the indices recovered from a generated node name.
type Parsed struct {
	Layer       int
	Mask        int // -1 for layer nodes
	Provisional bool
}

// IsMask reports whether the parsed name belongs to a mask node.
func (p Parsed) IsMask() bool { return p.Mask >= 0 }

// Parse recovers the encoded indices from a node name generated for material.
// It returns false when name was not produced by [LayerName] or [MaskName]
// (optionally with the provisional suffix) for that material.
func Parse(material, name string) (Parsed, bool) {
	rest, ok := strings.CutPrefix(name, material+sep)
	if !ok {
		return Parsed{}, false
	}
	p := Parsed{Mask: -1}
	if rest, p.Provisional = strings.CutSuffix(rest, ProvisionalSuffix); p.Provisional && rest == "" {
		return Parsed{}, false
	}

	parts := strings.Split(rest, sep)
	if len(parts) > 2 {
		return Parsed{}, false
	}
	idx := make([]int, len(parts))
	for i, s := range parts {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || strconv.Itoa(n) != s {
			return Parsed{}, false
		}
		idx[i] = n
	}
	p.Layer = idx[0]
	if len(idx) == 2 {
		p.Mask = idx[1]
	}
	return p, true
}
