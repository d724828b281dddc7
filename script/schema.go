package script

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Step block types, executed in file order.
const (
	blockNew        = "new"
	blockPointer    = "pointer"
	blockSet        = "set"
	blockGet        = "get"
	blockCall       = "call"
	blockStaticSet  = "static_set"
	blockStaticGet  = "static_get"
	blockStaticCall = "static_call"
	blockConvert    = "convert"
	blockDeref      = "deref"
	blockExpect     = "expect"
	blockDestruct   = "destruct"
)

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: blockNew, LabelNames: []string{"var"}},
		{Type: blockPointer, LabelNames: []string{"var"}},
		{Type: blockSet, LabelNames: []string{"var", "property"}},
		{Type: blockGet, LabelNames: []string{"var", "property"}},
		{Type: blockCall, LabelNames: []string{"var", "function"}},
		{Type: blockStaticSet, LabelNames: []string{"type", "property"}},
		{Type: blockStaticGet, LabelNames: []string{"type", "property"}},
		{Type: blockStaticCall, LabelNames: []string{"type", "function"}},
		{Type: blockConvert, LabelNames: []string{"var"}},
		{Type: blockDeref, LabelNames: []string{"var"}},
		{Type: blockExpect, LabelNames: []string{"var"}},
		{Type: blockDestruct, LabelNames: []string{"var"}},
	},
}

// newBody constructs a value of Type into the labelled variable.
type newBody struct {
	Type      string    `hcl:"type"`
	Args      cty.Value `hcl:"args,optional"`
	Refs      []string  `hcl:"refs,optional"`
	Signature []string  `hcl:"signature,optional"`
}

// pointerBody boxes the address of variable To into the labelled variable.
type pointerBody struct {
	To string `hcl:"to"`
}

type callBody struct {
	Args      cty.Value `hcl:"args,optional"`
	Refs      []string  `hcl:"refs,optional"`
	Signature []string  `hcl:"signature,optional"`
	Into      string    `hcl:"into,optional"`
}

type valueBody struct {
	Value cty.Value `hcl:"value"`
}

type intoBody struct {
	Into string `hcl:"into,optional"`
}

type convertBody struct {
	To   string `hcl:"to"`
	Into string `hcl:"into,optional"`
}

type derefBody struct {
	Into string `hcl:"into"`
}

type expectBody struct {
	Property string    `hcl:"property,optional"`
	Equals   cty.Value `hcl:"equals,optional"`
	State    string    `hcl:"state,optional"`
}

type emptyBody struct{}
