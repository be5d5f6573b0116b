// Package artifacts reads compiled contract artifacts and reads/writes the
// deployment files the API server binds against at startup.
package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrNoABI      = errors.New("artifact has no abi")
	ErrNoBytecode = errors.New("artifact has no bytecode")
	ErrNoAddress  = errors.New("address file has no entry for contract")
)

// Artifact is a compiled contract in hardhat's artifact format. Raw keeps the
// full document so it can be written back unchanged.
type Artifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName,omitempty"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`

	Raw []byte `json:"-"`
}

// Deployment is what the API server needs to bind the contract.
type Deployment struct {
	Name    string
	Address common.Address
	ABI     abi.ABI
}

// ReadArtifact loads a compiled artifact from disk.
func ReadArtifact(path string) (*Artifact, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseArtifact(b)
}

// ParseArtifact decodes a compiled artifact.
func ParseArtifact(b []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("artifact decode: %w", err)
	}
	if len(a.ABI) == 0 || string(a.ABI) == "null" {
		return nil, ErrNoABI
	}
	a.Raw = b
	return &a, nil
}

// ParsedABI returns the artifact's ABI.
func (a *Artifact) ParsedABI() (abi.ABI, error) {
	return abi.JSON(bytes.NewReader(a.ABI))
}

// DeployBytecode returns the creation bytecode.
func (a *Artifact) DeployBytecode() ([]byte, error) {
	code := strings.TrimSpace(a.Bytecode)
	if code == "" || code == "0x" {
		return nil, ErrNoBytecode
	}
	if !strings.HasPrefix(code, "0x") {
		code = "0x" + code
	}
	return hexutil.Decode(code)
}

// AddressFile is the path of the <name>-address.json file in dir.
func AddressFile(dir, name string) string {
	return filepath.Join(dir, name+"-address.json")
}

// ArtifactFile is the path of the <name>.json file in dir.
func ArtifactFile(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// WriteDeployment writes {"<name>": "<address>"} and the full artifact into dir,
// creating dir if needed. Both files are indented with two spaces.
func WriteDeployment(dir, name string, addr common.Address, a *Artifact) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	addrJSON, err := json.MarshalIndent(map[string]string{name: addr.Hex()}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(AddressFile(dir, name), addrJSON, 0o644); err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, a.Raw, "", "  "); err != nil {
		return fmt.Errorf("artifact indent: %w", err)
	}
	return os.WriteFile(ArtifactFile(dir, name), out.Bytes(), 0o644)
}

// LoadDeployment reads the address and artifact files written by WriteDeployment.
func LoadDeployment(dir, name string) (*Deployment, error) {
	b, err := os.ReadFile(AddressFile(dir, name))
	if err != nil {
		return nil, err
	}
	var addrs map[string]string
	if err := json.Unmarshal(b, &addrs); err != nil {
		return nil, fmt.Errorf("address file decode: %w", err)
	}
	hex, ok := addrs[name]
	if !ok || !common.IsHexAddress(hex) {
		return nil, fmt.Errorf("%w %q", ErrNoAddress, name)
	}

	a, err := ReadArtifact(ArtifactFile(dir, name))
	if err != nil {
		return nil, err
	}
	parsed, err := a.ParsedABI()
	if err != nil {
		return nil, fmt.Errorf("abi parse: %w", err)
	}
	return &Deployment{Name: name, Address: common.HexToAddress(hex), ABI: parsed}, nil
}
