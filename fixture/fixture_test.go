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

package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const regtestKey = "0xc85ef7d79691fe79573b1a7064c19c1a9819ebdbd1faaab1a8ec92344438aaf4"

func TestDefaultArtifact(t *testing.T) {
	a := DefaultArtifact()
	require.Equal(t, "HelloWorld", a.Name)
	require.Len(t, a.DeployedBytecode, 0xff)
	require.Equal(t, a.DeployedBytecode, a.Bytecode[len(a.Bytecode)-len(a.DeployedBytecode):])

	get, err := a.GetCalldata()
	require.NoError(t, err)
	require.Equal(t, "0x6d4ce63c", hexutil.Encode(get))

	set, err := a.SetCalldata(34)
	require.NoError(t, err)
	require.Equal(t, "0x60fe47b1"+Word(34)[2:], hexutil.Encode(set))

	require.Equal(t, "0x93fe6d397c74fdf1402a8b72e47b68512f0510d7b98a4bc4cbdf6ac7108b3c59", a.ValueChangedTopic())

	v, err := a.DecodeValueChanged(common.LeftPadBytes([]byte{34}, 32))
	require.NoError(t, err)
	require.Equal(t, "34", v)
}

func TestLoadArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "HelloWorld.json")
	require.NoError(t, os.WriteFile(path, helloWorldJSON, 0o600))

	a, err := LoadArtifact(path)
	require.NoError(t, err)
	require.Equal(t, DefaultArtifact().DeployedBytecode, a.DeployedBytecode)

	_, err = LoadArtifact(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestParseArtifactRejectsIncompleteContracts(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"bad bytecode": `{"abi":[],"bytecode":"0xzz","deployedBytecode":"0x00"}`,
		"no methods":   `{"abi":[],"bytecode":"0x6080","deployedBytecode":"0x6080"}`,
		"empty code":   `{"abi":[{"type":"function","name":"get","inputs":[],"outputs":[{"name":"","type":"uint256"}]},{"type":"function","name":"set","inputs":[{"name":"x","type":"uint256"}],"outputs":[]},{"type":"event","name":"ValueChanged","inputs":[{"name":"newValue","type":"uint256","indexed":false}]}],"bytecode":"0x","deployedBytecode":"0x"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseArtifact([]byte(body))
			require.Error(t, err)
		})
	}
}

func TestWords(t *testing.T) {
	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000005", Word(5))
	require.Equal(t, "0x0000000000000000000000000000000000000000000000000000000000000022", Word(34))

	v, err := ParseWord(Word(34))
	require.NoError(t, err)
	require.Equal(t, uint64(34), v.Uint64())

	_, err = ParseWord("0x22")
	require.Error(t, err)
	_, err = ParseWord("0xzz")
	require.Error(t, err)
}

func TestAccountSignsForChain(t *testing.T) {
	acct, err := NewAccount(regtestKey, 33)
	require.NoError(t, err)
	art := DefaultArtifact()

	deploy, err := acct.DeployTx(art, 0)
	require.NoError(t, err)
	require.Nil(t, deploy.To())
	require.Equal(t, uint64(DeployGas), deploy.Gas())
	require.Zero(t, deploy.GasPrice().Cmp(DeployGasPrice))
	require.Equal(t, uint64(33), deploy.ChainId().Uint64())

	from, err := types.Sender(types.LatestSignerForChainID(deploy.ChainId()), deploy)
	require.NoError(t, err)
	require.Equal(t, acct.Address, from)

	contract := acct.ContractAddress(0)
	set, err := acct.SetTx(art, contract, 1, 34, 27_000)
	require.NoError(t, err)
	require.Equal(t, contract, *set.To())
	require.Zero(t, set.GasPrice().Cmp(SetGasPrice))

	raw, err := RawHex(set)
	require.NoError(t, err)
	decoded := new(types.Transaction)
	require.NoError(t, decoded.UnmarshalBinary(hexutil.MustDecode(raw)))
	require.Equal(t, set.Hash(), decoded.Hash())

	_, err = NewAccount("0xnotakey", 33)
	require.Error(t, err)
}
