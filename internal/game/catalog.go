/*
Package game
File: catalog.go
Description:
    Loads and exposes the static card catalog (nodes and protocols).
    The catalog is the YAML equivalent of a printed card set: decoded once,
    then treated as immutable for the life of the process.

    Lookups here back the state mapper, which must resolve server-sent IDs
    against the same card set the local engine plays with.
*/

package game

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// CardCatalog is the decoded card set: one node list per category plus the
// protocol pool.
type CardCatalog struct {
	Research   []Node     `yaml:"research"`
	Production []Node     `yaml:"production"`
	Network    []Node     `yaml:"network"`
	Control    []Node     `yaml:"control"`
	Protocols  []Protocol `yaml:"protocols"`
}

var (
	catalogOnce sync.Once
	catalog     CardCatalog
	nodeIndex   map[string]Node
	protoIndex  map[string]Protocol
)

// Catalog returns the process-wide card set, decoding the embedded YAML on
// first use. Decoding the embedded file cannot fail outside of a build
// mistake, so a failure here panics rather than returning an error.
func Catalog() CardCatalog {
	catalogOnce.Do(func() {
		if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
			panic(fmt.Sprintf("catalog: bad embedded card set: %v", err))
		}

		// Build the ID indexes by concatenating the four category lists.
		nodeIndex = make(map[string]Node)
		for _, cat := range NodeCategories {
			for _, n := range catalog.NodesFor(cat) {
				nodeIndex[n.ID] = n
			}
		}
		protoIndex = make(map[string]Protocol, len(catalog.Protocols))
		for _, p := range catalog.Protocols {
			protoIndex[p.ID] = p
		}
	})
	return catalog
}

// NodesFor returns the catalog list for one category.
func (c CardCatalog) NodesFor(cat NodeCategory) []Node {
	switch cat {
	case Research:
		return c.Research
	case Production:
		return c.Production
	case Network:
		return c.Network
	case Control:
		return c.Control
	}
	return nil
}

// AllNodes concatenates the four category lists in market-row order.
func AllNodes() []Node {
	c := Catalog()
	all := make([]Node, 0, len(c.Research)+len(c.Production)+len(c.Network)+len(c.Control))
	for _, cat := range NodeCategories {
		all = append(all, c.NodesFor(cat)...)
	}
	return all
}

// NodeByID resolves a catalog node. Returns nil if the ID is unknown.
func NodeByID(id string) *Node {
	Catalog()
	if n, ok := nodeIndex[id]; ok {
		return &n
	}
	return nil
}

// ProtocolByID resolves a catalog protocol. Returns nil if the ID is unknown.
func ProtocolByID(id string) *Protocol {
	Catalog()
	if p, ok := protoIndex[id]; ok {
		return &p
	}
	return nil
}

// flatCostDiscount reports whether a claimed protocol's effect text encodes
// the flat "-1 cost" benefit. The effect strings are display text; this is
// the one place the engine reads them.
func flatCostDiscount(p Protocol) bool {
	return strings.Contains(p.Effect, "-1 cost")
}
