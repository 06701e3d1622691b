// Copyright 2024 The go-ethereum-core Authors
// This file is part of the go-ethereum-core library.
//
// The go-ethereum-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum-core library. If not, see <http://www.gnu.org/licenses/>.

// Package types implements the canonical block header: its three
// constructors (field dictionary, RLP bytes, positional value sequence),
// its frozen-after-construction invariant, and its content-addressed hash.
package types

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/jackyl14/go-ethereum-core/params"
)

// Fixed field widths, spec section 3.
const (
	HashLength    = 32
	AddressLength = 20
	NonceLength   = 8
)

// EmptyRootHash and EmptyUncleHash are KECCAK256_RLP and
// KECCAK256_RLP_ARRAY from spec section 4.1: keccak256(RLP("")) and
// keccak256(RLP([])) respectively. Precomputed byte literals per Design
// Note 9 -- never recompute these at runtime.
var (
	EmptyRootHash  = common.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")
	EmptyUncleHash = common.HexToHash("1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347")
)

// DefaultGasLimit is substituted for an absent gasLimit field in
// fromFieldDict, and is the sentinel fromFieldDict's genesis-option path
// checks "equals its canonical zero" against.
var DefaultGasLimit = new(big.Int).SetUint64(0xffffffffffffff)

// CliqueExtraVanity and CliqueExtraSeal are the fixed-size sections that
// bookend the clique extraData layout (spec 4.1, 4.4).
const (
	CliqueExtraVanity = 32
	CliqueExtraSeal   = 65
)

// Header is an immutable block header. It is built exclusively through
// FromFieldDict, FromRLPBytes, or FromValuesSequence; there is no exported
// zero-value construction path, matching Design Note 9's "expose only an
// owned constructor and read-only accessors".
type Header struct {
	parentHash       common.Hash
	uncleHash        common.Hash
	coinbase         common.Address
	stateRoot        common.Hash
	transactionsTrie common.Hash
	receiptTrie      common.Hash
	bloom            Bloom
	difficulty       *big.Int
	number           *big.Int
	gasLimit         *big.Int
	gasUsed          *big.Int
	timestamp        *big.Int
	extraData        []byte
	mixHash          common.Hash
	nonce            [NonceLength]byte

	hardfork  params.Hardfork
	algorithm params.ConsensusAlgorithm

	frozen bool
}

// BuildOptions configures construction. ChainParams is required whenever
// Hardfork is left empty (it resolves the hardfork via ActiveHardforkAt)
// or InitWithGenesisHeader is set (it supplies the genesis values).
type BuildOptions struct {
	ChainParams           params.ChainParams
	Hardfork              params.Hardfork
	InitWithGenesisHeader bool
}

// FieldDict is the field-named dictionary construction form (spec 4.1).
// A nil pointer/slice means the field is absent and takes its canonical
// zero value.
type FieldDict struct {
	ParentHash       *common.Hash
	UncleHash        *common.Hash
	Coinbase         *common.Address
	StateRoot        *common.Hash
	TransactionsTrie *common.Hash
	ReceiptTrie      *common.Hash
	Bloom            *Bloom
	Difficulty       *big.Int
	Number           *big.Int
	GasLimit         *big.Int
	GasUsed          *big.Int
	Timestamp        *big.Int
	ExtraData        []byte
	ExtraDataSet     bool
	MixHash          *common.Hash
	Nonce            *[NonceLength]byte
}

// rawFields is the unfrozen, mutable working copy used during
// construction. It mirrors Header but lets the genesis-option and
// field-width passes mutate before the header is frozen.
type rawFields struct {
	parentHash, uncleHash, stateRoot, transactionsTrie, receiptTrie, mixHash common.Hash
	coinbase                                                                common.Address
	bloom                                                                   Bloom
	difficulty, number, gasLimit, gasUsed, timestamp                        *big.Int
	extraData                                                               []byte
	nonce                                                                   [NonceLength]byte
}

// FromFieldDict builds a Header from a field-named dictionary, substituting
// canonical zero values for absent fields (spec 4.1).
func FromFieldDict(data FieldDict, opts BuildOptions) (*Header, error) {
	r := rawFields{
		uncleHash:        EmptyUncleHash,
		transactionsTrie: EmptyRootHash,
		receiptTrie:      EmptyRootHash,
		difficulty:       new(big.Int),
		number:           new(big.Int),
		gasLimit:         new(big.Int).Set(DefaultGasLimit),
		gasUsed:          new(big.Int),
		timestamp:        new(big.Int),
	}
	if data.ParentHash != nil {
		r.parentHash = *data.ParentHash
	}
	if data.UncleHash != nil {
		r.uncleHash = *data.UncleHash
	}
	if data.Coinbase != nil {
		r.coinbase = *data.Coinbase
	}
	if data.StateRoot != nil {
		r.stateRoot = *data.StateRoot
	}
	if data.TransactionsTrie != nil {
		r.transactionsTrie = *data.TransactionsTrie
	}
	if data.ReceiptTrie != nil {
		r.receiptTrie = *data.ReceiptTrie
	}
	if data.Bloom != nil {
		r.bloom = *data.Bloom
	}
	if data.Difficulty != nil {
		r.difficulty = new(big.Int).Set(data.Difficulty)
	}
	if data.Number != nil {
		r.number = new(big.Int).Set(data.Number)
	}
	if data.GasLimit != nil {
		r.gasLimit = new(big.Int).Set(data.GasLimit)
	}
	if data.GasUsed != nil {
		r.gasUsed = new(big.Int).Set(data.GasUsed)
	}
	if data.Timestamp != nil {
		r.timestamp = new(big.Int).Set(data.Timestamp)
	}
	if data.ExtraDataSet {
		r.extraData = append([]byte(nil), data.ExtraData...)
	}
	if data.MixHash != nil {
		r.mixHash = *data.MixHash
	}
	if data.Nonce != nil {
		r.nonce = *data.Nonce
	}
	return finishConstruction(r, opts)
}

// FromRLPBytes RLP-decodes bytes as a top-level sequence and delegates to
// FromValuesSequence (spec 4.1).
func FromRLPBytes(data []byte, opts BuildOptions) (*Header, error) {
	var values [][]byte
	stream := rlp.NewStream(bytes.NewReader(data), 0)
	kind, _, err := stream.Kind()
	if err != nil || kind != rlp.List {
		return nil, ErrMalformedHeader
	}
	if _, err := stream.List(); err != nil {
		return nil, ErrMalformedHeader
	}
	for {
		b, err := stream.Bytes()
		if err == rlp.EOL {
			break
		}
		if err != nil {
			return nil, ErrMalformedHeader
		}
		values = append(values, b)
	}
	if err := stream.ListEnd(); err != nil {
		return nil, ErrMalformedHeader
	}
	return FromValuesSequence(values, opts)
}

// field positions within the 15-element canonical sequence (spec 4.1).
const (
	posParentHash = iota
	posUncleHash
	posCoinbase
	posStateRoot
	posTransactionsTrie
	posReceiptTrie
	posBloom
	posDifficulty
	posNumber
	posGasLimit
	posGasUsed
	posTimestamp
	posExtraData
	posMixHash
	posNonce
	numHeaderFields
)

// FromValuesSequence interprets values positionally: parentHash,
// uncleHash, coinbase, stateRoot, transactionsTrie, receiptTrie, bloom,
// difficulty, number, gasLimit, gasUsed, timestamp, extraData, mixHash,
// nonce (spec 4.1). Numeric fields are big-endian unsigned; empty bytes
// encode zero.
func FromValuesSequence(values [][]byte, opts BuildOptions) (*Header, error) {
	if len(values) > numHeaderFields {
		return nil, ErrMalformedHeader
	}
	get := func(i int) []byte {
		if i < len(values) {
			return values[i]
		}
		return nil
	}
	r := rawFields{
		uncleHash:        EmptyUncleHash,
		transactionsTrie: EmptyRootHash,
		receiptTrie:      EmptyRootHash,
		gasLimit:         new(big.Int).Set(DefaultGasLimit),
	}
	if v := get(posParentHash); v != nil {
		if err := checkWidth("parentHash", v, HashLength); err != nil {
			return nil, err
		}
		r.parentHash = common.BytesToHash(v)
	}
	if v := get(posUncleHash); v != nil {
		if err := checkWidth("uncleHash", v, HashLength); err != nil {
			return nil, err
		}
		r.uncleHash = common.BytesToHash(v)
	}
	if v := get(posCoinbase); v != nil {
		if err := checkWidth("coinbase", v, AddressLength); err != nil {
			return nil, err
		}
		r.coinbase = common.BytesToAddress(v)
	}
	if v := get(posStateRoot); v != nil {
		if err := checkWidth("stateRoot", v, HashLength); err != nil {
			return nil, err
		}
		r.stateRoot = common.BytesToHash(v)
	}
	if v := get(posTransactionsTrie); v != nil {
		if err := checkWidth("transactionsTrie", v, HashLength); err != nil {
			return nil, err
		}
		r.transactionsTrie = common.BytesToHash(v)
	}
	if v := get(posReceiptTrie); v != nil {
		if err := checkWidth("receiptTrie", v, HashLength); err != nil {
			return nil, err
		}
		r.receiptTrie = common.BytesToHash(v)
	}
	if v := get(posBloom); v != nil {
		if err := checkWidth("bloom", v, BloomByteLength); err != nil {
			return nil, err
		}
		r.bloom = BytesToBloom(v)
	}
	r.difficulty = new(big.Int).SetBytes(get(posDifficulty))
	r.number = new(big.Int).SetBytes(get(posNumber))
	if v := get(posGasLimit); v != nil {
		r.gasLimit = new(big.Int).SetBytes(v)
	}
	r.gasUsed = new(big.Int).SetBytes(get(posGasUsed))
	r.timestamp = new(big.Int).SetBytes(get(posTimestamp))
	r.extraData = append([]byte(nil), get(posExtraData)...)
	if v := get(posMixHash); v != nil {
		if err := checkWidth("mixHash", v, HashLength); err != nil {
			return nil, err
		}
		r.mixHash = common.BytesToHash(v)
	}
	if v := get(posNonce); v != nil {
		if err := checkWidth("nonce", v, NonceLength); err != nil {
			return nil, err
		}
		copy(r.nonce[:], v)
	}
	return finishConstruction(r, opts)
}

func checkWidth(field string, value []byte, want int) error {
	if len(value) != want {
		return &ErrInvalidFieldWidth{Field: field, Want: want, Got: len(value)}
	}
	return nil
}

// finishConstruction resolves the hardfork context, applies the genesis
// option, runs the DAO extra-data gate, and freezes the header.
func finishConstruction(r rawFields, opts BuildOptions) (*Header, error) {
	hf := opts.Hardfork
	if hf == "" {
		if opts.ChainParams == nil {
			return nil, ErrMalformedHeader
		}
		hf = opts.ChainParams.ActiveHardforkAt(r.number)
	}

	if opts.InitWithGenesisHeader {
		if hf != params.Chainstart {
			return nil, ErrInvalidGenesisOption
		}
		if opts.ChainParams == nil {
			return nil, ErrInvalidGenesisOption
		}
		applyGenesisDefaults(&r, opts.ChainParams.Genesis())
	}

	algorithm := params.Ethash
	if opts.ChainParams != nil {
		algorithm = opts.ChainParams.ConsensusAlgorithm()
	}

	h := &Header{
		parentHash:       r.parentHash,
		uncleHash:        r.uncleHash,
		coinbase:         r.coinbase,
		stateRoot:        r.stateRoot,
		transactionsTrie: r.transactionsTrie,
		receiptTrie:      r.receiptTrie,
		bloom:            r.bloom,
		difficulty:       r.difficulty,
		number:           r.number,
		gasLimit:         r.gasLimit,
		gasUsed:          r.gasUsed,
		timestamp:        r.timestamp,
		extraData:        r.extraData,
		mixHash:          r.mixHash,
		nonce:            r.nonce,
		hardfork:         hf,
		algorithm:        algorithm,
	}

	if err := checkDAOGate(h, opts.ChainParams); err != nil {
		return nil, err
	}

	h.frozen = true
	return h, nil
}

// applyGenesisDefaults substitutes the ChainParams genesis values for any
// field that still equals its canonical zero (spec 4.1).
func applyGenesisDefaults(r *rawFields, g params.GenesisValues) {
	r.number = new(big.Int)
	if r.gasLimit.Cmp(DefaultGasLimit) == 0 {
		r.gasLimit = new(big.Int).SetUint64(g.GasLimit)
	}
	if r.timestamp.Sign() == 0 {
		r.timestamp = new(big.Int).SetUint64(g.Timestamp)
	}
	if r.difficulty.Sign() == 0 {
		r.difficulty = new(big.Int).SetUint64(g.Difficulty)
	}
	if len(r.extraData) == 0 {
		r.extraData = append([]byte(nil), g.ExtraData...)
	}
	if r.nonce == ([NonceLength]byte{}) {
		r.nonce = g.Nonce
	}
	if r.stateRoot == (common.Hash{}) {
		r.stateRoot = g.StateRoot
	}
}

// checkDAOGate enforces spec 4.2's DAO extraData gate at construction
// time: for the 10 blocks starting at the DAO hardfork's activation block,
// extraData must equal the literal ASCII marker.
func checkDAOGate(h *Header, cp params.ChainParams) error {
	if cp == nil || !cp.IsHardforkActive(params.DAO) {
		return nil
	}
	daoBlock := cp.HardforkBlock(params.DAO)
	if daoBlock == nil || h.number.Cmp(daoBlock) < 0 {
		return nil
	}
	delta := new(big.Int).Sub(h.number, daoBlock)
	if delta.Cmp(big.NewInt(9)) > 0 {
		return nil
	}
	if !bytes.Equal(h.extraData, daoForkExtraData) {
		return ErrInvalidDAOExtraData
	}
	return nil
}

var daoForkExtraData = []byte("dao-hard-fork")

// RawSequence returns the 15-element positional RLP sequence, numeric
// fields minimally big-endian encoded (spec 4.1).
func (h *Header) RawSequence() [][]byte {
	return [][]byte{
		h.parentHash.Bytes(),
		h.uncleHash.Bytes(),
		h.coinbase.Bytes(),
		h.stateRoot.Bytes(),
		h.transactionsTrie.Bytes(),
		h.receiptTrie.Bytes(),
		h.bloom.Bytes(),
		minimalBigEndian(h.difficulty),
		minimalBigEndian(h.number),
		minimalBigEndian(h.gasLimit),
		minimalBigEndian(h.gasUsed),
		minimalBigEndian(h.timestamp),
		h.extraData,
		h.mixHash.Bytes(),
		h.nonce[:],
	}
}

func minimalBigEndian(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return nil
	}
	return v.Bytes()
}

// Hash returns the keccak256 hash of the RLP-encoded raw sequence. For a
// non-genesis clique header, element 12 (extraData) is truncated to drop
// the trailing CliqueExtraSeal bytes first (spec 4.1).
func (h *Header) Hash() common.Hash {
	seq := h.RawSequence()
	if h.algorithm == params.Clique && h.number.Sign() != 0 {
		extra := seq[posExtraData]
		if len(extra) >= CliqueExtraSeal {
			seq[posExtraData] = extra[:len(extra)-CliqueExtraSeal]
		}
	}
	enc, err := rlp.EncodeToBytes(seqAsInterfaces(seq))
	if err != nil {
		panic("types: header is unencodable: " + err.Error())
	}
	return crypto.Keccak256Hash(enc)
}

func seqAsInterfaces(seq [][]byte) []interface{} {
	out := make([]interface{}, len(seq))
	for i, b := range seq {
		out[i] = b
	}
	return out
}

// Accessors. The header is frozen; all of these are read-only views.

func (h *Header) ParentHash() common.Hash       { return h.parentHash }
func (h *Header) UncleHash() common.Hash        { return h.uncleHash }
func (h *Header) Coinbase() common.Address      { return h.coinbase }
func (h *Header) StateRoot() common.Hash        { return h.stateRoot }
func (h *Header) TransactionsTrie() common.Hash { return h.transactionsTrie }
func (h *Header) ReceiptTrie() common.Hash      { return h.receiptTrie }
func (h *Header) Bloom() Bloom                  { return h.bloom }
func (h *Header) Difficulty() *big.Int          { return new(big.Int).Set(h.difficulty) }
func (h *Header) Number() *big.Int              { return new(big.Int).Set(h.number) }
func (h *Header) GasLimit() *big.Int            { return new(big.Int).Set(h.gasLimit) }
func (h *Header) GasUsed() *big.Int             { return new(big.Int).Set(h.gasUsed) }
func (h *Header) Timestamp() *big.Int           { return new(big.Int).Set(h.timestamp) }
func (h *Header) ExtraData() []byte             { return append([]byte(nil), h.extraData...) }
func (h *Header) MixHash() common.Hash          { return h.mixHash }
func (h *Header) Nonce() [NonceLength]byte      { return h.nonce }
func (h *Header) Hardfork() params.Hardfork     { return h.hardfork }
func (h *Header) Algorithm() params.ConsensusAlgorithm { return h.algorithm }
func (h *Header) IsGenesis() bool               { return h.number.Sign() == 0 }
func (h *Header) Frozen() bool                  { return h.frozen }
