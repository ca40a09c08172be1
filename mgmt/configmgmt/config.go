// Package configmgmt exposes configuration lifecycle operations over the management server.
package configmgmt

import (
	"bytes"
	"encoding/hex"

	"github.com/flexsw/flexsw/sw"
)

// ConfigMgmt manages configuration loading, swapping, and persisted state.
type ConfigMgmt struct {
	Sw *sw.Switch
}

// CxtArg addresses one context.
type CxtArg struct {
	Cxt int `json:"cxt"`
}

// LoadArg carries a configuration blob.
type LoadArg struct {
	CxtArg
	Config string `json:"config"`
}

// LoadNewConfig stages a new configuration and orders a swap.
func (mg ConfigMgmt) LoadNewConfig(args LoadArg, reply *struct{}) error {
	return mg.Sw.LoadNewConfig(args.Cxt, []byte(args.Config))
}

// SwapConfigs performs the pending swap of a context.
func (mg ConfigMgmt) SwapConfigs(args CxtArg, reply *struct{}) error {
	return mg.Sw.SwapConfigs(args.Cxt)
}

// DoSwapReply reports whether a swap was performed.
type DoSwapReply struct {
	// Skipped is 1 if no context had a swap pending.
	Skipped int `json:"skipped"`
}

// DoSwap performs the pending swap of every context.
func (mg ConfigMgmt) DoSwap(args struct{}, reply *DoSwapReply) error {
	skipped, e := mg.Sw.DoSwap()
	reply.Skipped = skipped
	return e
}

// ConfigReply carries a configuration blob.
type ConfigReply struct {
	Config string `json:"config"`
}

// GetConfig returns the live configuration of a context.
func (mg ConfigMgmt) GetConfig(args CxtArg, reply *ConfigReply) error {
	blob, e := mg.Sw.GetConfig(args.Cxt)
	if e != nil {
		return e
	}
	reply.Config = string(blob)
	return nil
}

// Md5Reply carries a configuration digest in hexadecimal.
type Md5Reply struct {
	Md5 string `json:"md5"`
}

// GetConfigMd5 returns the digest of the live configuration.
func (mg ConfigMgmt) GetConfigMd5(args CxtArg, reply *Md5Reply) error {
	sum, e := mg.Sw.GetConfigMD5(args.Cxt)
	if e != nil {
		return e
	}
	reply.Md5 = hex.EncodeToString(sum[:])
	return nil
}

// ResetState discards the mutable state of a context.
func (mg ConfigMgmt) ResetState(args CxtArg, reply *struct{}) error {
	return mg.Sw.ResetStateContext(args.Cxt)
}

// StateReply carries serialized context state.
type StateReply struct {
	State string `json:"state"`
}

// Serialize writes the mutable state of a context.
func (mg ConfigMgmt) Serialize(args CxtArg, reply *StateReply) error {
	var buf bytes.Buffer
	if e := mg.Sw.Serialize(args.Cxt, &buf); e != nil {
		return e
	}
	reply.State = buf.String()
	return nil
}

// DeserializeArg carries serialized context state.
type DeserializeArg struct {
	CxtArg
	State string `json:"state"`
}

// Deserialize restores the mutable state of a context.
func (mg ConfigMgmt) Deserialize(args DeserializeArg, reply *struct{}) error {
	return mg.Sw.Deserialize(args.Cxt, bytes.NewReader([]byte(args.State)))
}
