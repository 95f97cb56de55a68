package app

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const (
	referenceSuffixLen = 5
	base36Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ReferenceGenerator builds transaction references of the form
// <prefix><snowflake id><5 base-36 chars>. The snowflake part is strictly
// increasing within a process, so references never collide there.
type ReferenceGenerator struct {
	prefix string
	node   *snowflake.Node
}

func NewReferenceGenerator(prefix string, nodeID int64) (*ReferenceGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("new reference generator: node %d: %w", nodeID, err)
	}
	return &ReferenceGenerator{prefix: prefix, node: node}, nil
}

func (g *ReferenceGenerator) Next() string {
	random := uuid.New()

	var b strings.Builder
	b.Grow(len(g.prefix) + 20 + referenceSuffixLen)
	b.WriteString(g.prefix)
	b.WriteString(g.node.Generate().String())
	for i := 0; i < referenceSuffixLen; i++ {
		b.WriteByte(base36Alphabet[int(random[i])%len(base36Alphabet)])
	}
	return b.String()
}
