package model

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=GenerationBehavior -trimprefix=Behavior

// GenerationBehavior selects which conversion functions are emitted for a type.
type GenerationBehavior int

const (
	BehaviorFull GenerationBehavior = iota
	BehaviorOnlyTransferFunctions
	BehaviorOnlyOriginalFunctions
	BehaviorOnlyToFunctions
	BehaviorOnlyFromFunctions
	BehaviorNoGeneration
)

// Behaviors lists every GenerationBehavior in declaration order.
var Behaviors = []GenerationBehavior{
	BehaviorFull,
	BehaviorOnlyTransferFunctions,
	BehaviorOnlyOriginalFunctions,
	BehaviorOnlyToFunctions,
	BehaviorOnlyFromFunctions,
	BehaviorNoGeneration,
}

// FunctionSet is a set of conversion functions.
type FunctionSet uint8

const (
	ToTransfer   FunctionSet = 1 << iota // (original) -> transfer
	FromTransfer                         // populate original from transfer
	ToOriginal                           // (transfer) -> original
	FromOriginal                         // populate transfer from original

	NoFunctions  FunctionSet = 0
	AllFunctions             = ToTransfer | FromTransfer | ToOriginal | FromOriginal
)

// Has reports whether every function in o is part of s.
func (s FunctionSet) Has(o FunctionSet) bool {
	return s&o == o
}

var behaviorFunctions = map[GenerationBehavior]FunctionSet{
	BehaviorFull:                  AllFunctions,
	BehaviorOnlyTransferFunctions: ToTransfer | FromOriginal,
	BehaviorOnlyOriginalFunctions: FromTransfer | ToOriginal,
	BehaviorOnlyToFunctions:       ToTransfer | ToOriginal,
	BehaviorOnlyFromFunctions:     FromTransfer | FromOriginal,
	BehaviorNoGeneration:          NoFunctions,
}

// Functions returns the conversion functions gated by b.
func (b GenerationBehavior) Functions() FunctionSet {
	return behaviorFunctions[b]
}

// EmitsConversion reports whether a conversion holder is produced at all.
func (b GenerationBehavior) EmitsConversion() bool {
	return b != BehaviorNoGeneration
}

// legacy names accepted for compatibility with older marker configurations
var behaviorAliases = map[string]GenerationBehavior{
	"onlydto":         BehaviorOnlyTransferFunctions,
	"onlypoco":        BehaviorOnlyOriginalFunctions,
	"onlytomethods":   BehaviorOnlyToFunctions,
	"onlyfrommethods": BehaviorOnlyFromFunctions,
}

// ParseGenerationBehavior parses a behavior name case-insensitively. The name may
// carry the GenerationBehavior. qualifier.
func ParseGenerationBehavior(s string) (GenerationBehavior, error) {
	name := strings.TrimSpace(s)
	name = strings.TrimPrefix(name, "GenerationBehavior.")
	for _, b := range Behaviors {
		if strings.EqualFold(b.String(), name) {
			return b, nil
		}
	}
	if b, ok := behaviorAliases[strings.ToLower(name)]; ok {
		return b, nil
	}
	return BehaviorFull, fmt.Errorf("unknown generation behavior %q", s)
}
