// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package fixture holds the inputs a smoke run needs besides the node itself: the
// storage contract artifact, the signing account and the transactions built from
// them.
package fixture

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

//go:embed contracts/HelloWorld.json
var helloWorldJSON []byte

// Artifact is a compiled contract.
type Artifact struct {
	Name             string
	ABI              abi.ABI
	Bytecode         []byte // creation code
	DeployedBytecode []byte // runtime code
}

type artifactJSON struct {
	ContractName     string          `json:"contractName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
}

// ParseArtifact decodes a truffle style artifact.
func ParseArtifact(data []byte) (*Artifact, error) {
	var raw artifactJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
	if err != nil {
		return nil, fmt.Errorf("decode artifact abi: %w", err)
	}
	code, err := hexutil.Decode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("decode artifact bytecode: %w", err)
	}
	runtime, err := hexutil.Decode(raw.DeployedBytecode)
	if err != nil {
		return nil, fmt.Errorf("decode artifact deployedBytecode: %w", err)
	}
	a := &Artifact{Name: raw.ContractName, ABI: parsed, Bytecode: code, DeployedBytecode: runtime}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadArtifact reads an artifact from disk.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return ParseArtifact(data)
}

// DefaultArtifact returns the embedded storage contract.
func DefaultArtifact() *Artifact {
	a, err := ParseArtifact(helloWorldJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded artifact: %v", err))
	}
	return a
}

// Validate checks the artifact exposes what the smoke catalog drives: get(),
// set(uint256) and the ValueChanged event.
func (a *Artifact) Validate() error {
	var errs []error
	if len(a.Bytecode) == 0 {
		errs = append(errs, errors.New("empty bytecode"))
	}
	if len(a.DeployedBytecode) == 0 {
		errs = append(errs, errors.New("empty deployedBytecode"))
	}
	if m, ok := a.ABI.Methods["get"]; !ok || len(m.Inputs) != 0 || len(m.Outputs) != 1 {
		errs = append(errs, errors.New("abi lacks get() returns (uint256)"))
	}
	if m, ok := a.ABI.Methods["set"]; !ok || len(m.Inputs) != 1 {
		errs = append(errs, errors.New("abi lacks set(uint256)"))
	}
	if _, ok := a.ABI.Events["ValueChanged"]; !ok {
		errs = append(errs, errors.New("abi lacks event ValueChanged"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("artifact %q: %w", a.Name, errors.Join(errs...))
	}
	return nil
}

// GetCalldata encodes a call to get().
func (a *Artifact) GetCalldata() ([]byte, error) {
	return a.ABI.Pack("get")
}

// SetCalldata encodes a call to set(v).
func (a *Artifact) SetCalldata(v uint64) ([]byte, error) {
	return a.ABI.Pack("set", Uint(v).ToBig())
}

// ValueChangedTopic is the topic of the ValueChanged event.
func (a *Artifact) ValueChangedTopic() string {
	return a.ABI.Events["ValueChanged"].ID.Hex()
}

// DecodeValueChanged returns the newValue carried by a ValueChanged log.
func (a *Artifact) DecodeValueChanged(data []byte) (string, error) {
	out, err := a.ABI.Unpack("ValueChanged", data)
	if err != nil {
		return "", fmt.Errorf("decode ValueChanged: %w", err)
	}
	if len(out) != 1 {
		return "", fmt.Errorf("decode ValueChanged: got %d values", len(out))
	}
	return fmt.Sprint(out[0]), nil
}
