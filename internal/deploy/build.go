package deploy

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTTL matches the node default for deploy validity.
	DefaultTTL = Duration(30 * time.Minute)

	// DefaultGasPrice is the conversion rate tolerance, always 1 on current
	// networks.
	DefaultGasPrice = 1

	// AmountArgName is the standard-payment argument name.
	AmountArgName = "amount"
)

// BuildParams is everything needed to construct an unsigned deploy invoking
// a stored-contract entry point.
type BuildParams struct {
	// AccountHex is the deploying account's public key hex (tag byte + key).
	AccountHex string

	ChainName string

	// ContractHash targets a stored contract; PackageHash targets the latest
	// version of a package instead. Exactly one must be set.
	ContractHash string
	PackageHash  string

	EntryPoint string
	Args       []NamedArg

	// PaymentMotes funds the standard payment clause.
	PaymentMotes *big.Int

	TTL      Duration
	GasPrice uint64
}

// Build constructs an unsigned deploy with an empty approvals list, computing
// body hash and deploy hash. Timestamp resolution is milliseconds, matching
// the header serialization.
func Build(p BuildParams, now time.Time) (*Deploy, error) {
	if p.AccountHex == "" {
		return nil, errors.New("account public key is required")
	}
	if p.ChainName == "" {
		return nil, errors.New("chain name is required")
	}
	if p.EntryPoint == "" {
		return nil, errors.New("entry point is required")
	}
	if (p.ContractHash == "") == (p.PackageHash == "") {
		return nil, errors.New("exactly one of contract hash or package hash must be set")
	}
	if p.PaymentMotes == nil || p.PaymentMotes.Sign() <= 0 {
		return nil, errors.New("payment amount must be positive")
	}

	ttl := p.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	gasPrice := p.GasPrice
	if gasPrice == 0 {
		gasPrice = DefaultGasPrice
	}

	amount, err := U512Arg(AmountArgName, p.PaymentMotes)
	if err != nil {
		return nil, errors.Wrap(err, "payment amount")
	}
	payment := ExecutableItem{
		Kind: KindModuleBytes,
		Args: []NamedArg{amount},
	}

	session := ExecutableItem{
		Kind:       KindStoredContract,
		Address:    p.ContractHash,
		EntryPoint: p.EntryPoint,
		Args:       p.Args,
	}
	if p.PackageHash != "" {
		session.Kind = KindStoredPackage
		session.Address = p.PackageHash
	}

	bodyHash, err := ComputeBodyHash(payment, session)
	if err != nil {
		return nil, errors.Wrap(err, "compute body hash")
	}

	header := Header{
		Account:      p.AccountHex,
		Timestamp:    now.UTC().Truncate(time.Millisecond),
		TTL:          ttl,
		GasPrice:     gasPrice,
		BodyHash:     bodyHash,
		Dependencies: []string{},
		ChainName:    p.ChainName,
	}

	hash, err := ComputeHash(header)
	if err != nil {
		return nil, errors.Wrap(err, "compute deploy hash")
	}

	return &Deploy{
		Hash:      hash,
		Header:    header,
		Payment:   payment,
		Session:   session,
		Approvals: []Approval{},
	}, nil
}

// IssueArgs builds the named args for the credential contract's issue entry
// point. The credential id is assigned by the contract, not passed in.
func IssueArgs(holderAccountHash, credentialType, title string, expiresAt uint64, metadataHash string) ([]NamedArg, error) {
	holder, err := KeyArg("holder", holderAccountHash)
	if err != nil {
		return nil, err
	}
	return []NamedArg{
		holder,
		StringArg("credential_type", credentialType),
		StringArg("title", title),
		U64Arg("expires_at", expiresAt),
		StringArg("metadata_hash", metadataHash),
	}, nil
}

// RevokeArgs builds the named args for the credential contract's revoke entry
// point.
func RevokeArgs(id *big.Int, reason string) ([]NamedArg, error) {
	idArg, err := U256Arg("id", id)
	if err != nil {
		return nil, err
	}
	return []NamedArg{idArg, StringArg("reason", reason)}, nil
}
