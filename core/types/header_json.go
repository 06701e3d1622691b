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

package types

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// jsonHeader is the third representation HeaderCodec supports: the same
// field set as FieldDict, but hex-encoded for wire/RPC use the way the
// teacher's gencodec-generated gen_header_json.go does it.
type jsonHeader struct {
	ParentHash       common.Hash    `json:"parentHash"`
	UncleHash        common.Hash    `json:"sha3Uncles"`
	Coinbase         common.Address `json:"miner"`
	StateRoot        common.Hash    `json:"stateRoot"`
	TransactionsTrie common.Hash    `json:"transactionsRoot"`
	ReceiptTrie      common.Hash    `json:"receiptsRoot"`
	Bloom            Bloom          `json:"logsBloom"`
	Difficulty       *hexutil.Big   `json:"difficulty"`
	Number           *hexutil.Big   `json:"number"`
	GasLimit         hexutil.Uint64 `json:"gasLimit"`
	GasUsed          hexutil.Uint64 `json:"gasUsed"`
	Timestamp        hexutil.Uint64 `json:"timestamp"`
	ExtraData        hexutil.Bytes  `json:"extraData"`
	MixHash          common.Hash    `json:"mixHash"`
	Nonce            hexutil.Bytes  `json:"nonce"`
	Hash             common.Hash    `json:"hash"`
}

// MarshalJSON implements the JSON representation of HeaderCodec.
func (h *Header) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonHeader{
		ParentHash:       h.parentHash,
		UncleHash:        h.uncleHash,
		Coinbase:         h.coinbase,
		StateRoot:        h.stateRoot,
		TransactionsTrie: h.transactionsTrie,
		ReceiptTrie:      h.receiptTrie,
		Bloom:            h.bloom,
		Difficulty:       (*hexutil.Big)(h.difficulty),
		Number:           (*hexutil.Big)(h.number),
		GasLimit:         hexutil.Uint64(h.gasLimit.Uint64()),
		GasUsed:          hexutil.Uint64(h.gasUsed.Uint64()),
		Timestamp:        hexutil.Uint64(h.timestamp.Uint64()),
		ExtraData:        h.extraData,
		MixHash:          h.mixHash,
		Nonce:            h.nonce[:],
		Hash:             h.Hash(),
	})
}

// FromJSON builds a Header from its JSON representation by converting to a
// FieldDict and delegating to FromFieldDict.
func FromJSON(data []byte, opts BuildOptions) (*Header, error) {
	var j jsonHeader
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, ErrMalformedHeader
	}
	var nonce [NonceLength]byte
	if err := checkWidth("nonce", j.Nonce, NonceLength); err != nil {
		return nil, err
	}
	copy(nonce[:], j.Nonce)

	fd := FieldDict{
		ParentHash:       &j.ParentHash,
		UncleHash:        &j.UncleHash,
		Coinbase:         &j.Coinbase,
		StateRoot:        &j.StateRoot,
		TransactionsTrie: &j.TransactionsTrie,
		ReceiptTrie:      &j.ReceiptTrie,
		Bloom:            &j.Bloom,
		Difficulty:       (*big.Int)(j.Difficulty),
		Number:           (*big.Int)(j.Number),
		GasLimit:         new(big.Int).SetUint64(uint64(j.GasLimit)),
		GasUsed:          new(big.Int).SetUint64(uint64(j.GasUsed)),
		Timestamp:        new(big.Int).SetUint64(uint64(j.Timestamp)),
		ExtraData:        j.ExtraData,
		ExtraDataSet:     true,
		MixHash:          &j.MixHash,
		Nonce:            &nonce,
	}
	return FromFieldDict(fd, opts)
}
