package hash

import (
	"encoding/hex"

	digest "github.com/opencontainers/go-digest"

	"github.com/lumenlang/lumen/ast"
	"github.com/lumenlang/lumen/types"
)

// kindTag distinguishes term hashes from type-definition hashes, per the
// "hash = SHA-256(kind_tag ‖ ...)" formula of §4.6.
type kindTag byte

const (
	KindTerm kindTag = iota
	KindType
)

// Hash is the content address of a definition: a SHA-256 digest of its
// canonical serialization, per §3.8/§6.5. It wraps go-digest's Digest, whose
// Encoded() gives the 64-character lowercase hex form used externally.
type Hash struct {
	d digest.Digest
}

// Of computes the content hash of a normalized expression and its principal
// type: SHA-256(kind_tag ‖ canonical(expr) ‖ canonical(type)).
func Of(kind kindTag, expr ast.Expr, ty *types.Type) Hash {
	e := &encoder{}
	e.byte(byte(kind))
	e.serializeExpr(ast.Normalize(expr))
	e.serializeType(types.Normalize(ty))
	return Hash{d: digest.FromBytes(e.buf)}
}

// OfTypeDef hashes a type declaration by its own serialization (it has no
// separate principal type — the declaration *is* its own type).
func OfTypeDef(n *ast.TypeDefExpr) Hash {
	e := &encoder{}
	e.byte(byte(KindType))
	e.serializeExpr(n)
	return Hash{d: digest.FromBytes(e.buf)}
}

// FromHex reconstructs a Hash from its 64-character hex form, as read back
// from a snapshot or typed at the shell.
func FromHex(hex string) (Hash, error) {
	d := digest.NewDigestFromEncoded(digest.SHA256, hex)
	if err := d.Validate(); err != nil {
		return Hash{}, err
	}
	return Hash{d: d}, nil
}

// Bytes returns the raw 32-byte digest, for binary snapshot serialization.
func (h Hash) Bytes() []byte {
	b, _ := hex.DecodeString(h.d.Encoded())
	return b
}

// FromBytes reconstructs a Hash from its raw 32-byte digest, as read back
// from a binary snapshot.
func FromBytes(b []byte) Hash {
	return Hash{d: digest.NewDigestFromEncoded(digest.SHA256, hex.EncodeToString(b))}
}

// String renders the 64-character lowercase hex form, per §6.5.
func (h Hash) String() string { return h.d.Encoded() }

// Short returns the first 8 hex characters, §6.5's display/identifier-prefix
// form.
func (h Hash) Short() string {
	full := h.d.Encoded()
	if len(full) < 8 {
		return full
	}
	return full[:8]
}

// IsZero reports whether h is the unset Hash.
func (h Hash) IsZero() bool { return h.d == "" }
