package deploy

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ItemKind discriminates the executable item variants a deploy can carry.
type ItemKind string

const (
	// KindModuleBytes is raw session wasm, also used for standard payment
	// (empty module bytes plus an amount arg).
	KindModuleBytes ItemKind = "module-bytes"

	// KindStoredContract invokes an entry point on a contract by hash.
	KindStoredContract ItemKind = "stored-contract"

	// KindStoredPackage invokes an entry point on the latest enabled version
	// of a contract package.
	KindStoredPackage ItemKind = "stored-package"
)

// NamedArg is one typed entry-point argument. Value holds the CL-serialized
// bytes as hex; Type is the CL type tag name used on the wire.
type NamedArg struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ExecutableItem is a deploy's payment or session clause.
type ExecutableItem struct {
	Kind        ItemKind   `json:"kind"`
	ModuleBytes string     `json:"module_bytes,omitempty"`
	Address     string     `json:"address,omitempty"`
	EntryPoint  string     `json:"entry_point,omitempty"`
	Args        []NamedArg `json:"args,omitempty"`
}

// Approval is one signer's contribution to a deploy's authorization set.
type Approval struct {
	Signer    string `json:"signer"`
	Signature string `json:"signature"`
}

// Header carries the deploy metadata that is hashed into the deploy hash.
type Header struct {
	Account      string    `json:"account"`
	Timestamp    time.Time `json:"timestamp"`
	TTL          Duration  `json:"ttl"`
	GasPrice     uint64    `json:"gas_price"`
	BodyHash     string    `json:"body_hash"`
	Dependencies []string  `json:"dependencies"`
	ChainName    string    `json:"chain_name"`
}

// Deploy is an instruction submitted to the network: header, payment and
// session clauses, and the approvals collected so far. Everything except the
// approvals list is immutable once built.
type Deploy struct {
	Hash      string         `json:"hash"`
	Header    Header         `json:"header"`
	Payment   ExecutableItem `json:"payment"`
	Session   ExecutableItem `json:"session"`
	Approvals []Approval     `json:"approvals"`
}

// HasApproval reports whether the deploy already carries an approval from the
// given signer.
func (d *Deploy) HasApproval(signer string) bool {
	for _, a := range d.Approvals {
		if a.Signer == signer {
			return true
		}
	}
	return false
}

// Duration wraps time.Duration to marshal in the node's human-readable form
// ("30m", "1h30m") instead of nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(err, "ttl is not a string")
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "invalid ttl %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// Millis returns the duration in whole milliseconds, the unit used by the
// header byte serialization.
func (d Duration) Millis() uint64 {
	return uint64(time.Duration(d) / time.Millisecond)
}
