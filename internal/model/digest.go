package model

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"slices"

	"golang.org/x/crypto/blake2b"
)

// Digest returns a hex-encoded BLAKE2b-256 hash of the tree's content.
// Choice order does not affect the digest, so it changes exactly when
// Equal would report a difference.
func Digest(n *Node) string {
	h, _ := blake2b.New256(nil) //nolint:errcheck // New256 only fails on oversized keys
	writeNode(h, n)
	return hex.EncodeToString(h.Sum(nil))
}

func writeNode(h hash.Hash, n *Node) {
	if n == nil {
		writeField(h, "")
		return
	}
	writeField(h, n.Title)
	writeField(h, n.ID)
	if !n.IsLeaf() {
		writeField(h, n.Text)
	} else {
		writeField(h, "")
	}

	labels := n.Labels()
	slices.Sort(labels)
	writeLength(h, len(labels))
	for _, label := range labels {
		writeField(h, label)
		writeNode(h, n.Child(label))
	}
}

func writeField(h hash.Hash, s string) {
	writeLength(h, len(s))
	_, _ = h.Write([]byte(s))
}

func writeLength(h hash.Hash, n int) {
	var buf [binary.MaxVarintLen64]byte
	_, _ = h.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}
