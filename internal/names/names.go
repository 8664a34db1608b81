// Package names generates friendly display names for players who sign
// up without choosing one.
package names

import (
	"crypto/rand"
	"math/big"
)

var adjectives = []string{
	"brisk", "bold", "clever", "crafty", "daring", "eager", "fluent", "gallant",
	"keen", "lively", "lucky", "merry", "nimble", "plucky", "quick", "sharp",
	"silent", "sly", "snappy", "speedy", "spry", "steady", "swift", "witty",
}

var nouns = []string{
	"badger", "condor", "falcon", "gecko", "heron", "ibis", "jackal", "kestrel",
	"lemur", "lynx", "marmot", "ocelot", "osprey", "otter", "puffin", "raven",
	"serval", "stoat", "tapir", "toucan", "viper", "vole", "wombat", "wren",
}

// RandomDisplayName returns a name in the form "adjective-noun", e.g.
// "swift-otter".
func RandomDisplayName() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	return adjective + "-" + noun, nil
}

func randomElement(slice []string) (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
