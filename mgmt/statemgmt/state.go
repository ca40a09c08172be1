// Package statemgmt exposes counter, meter, register, parse-vset, and CRC
// operations over the management server.
package statemgmt

import (
	"encoding/hex"

	"github.com/flexsw/flexsw/container/crcmgr"
	"github.com/flexsw/flexsw/container/meter"
	"github.com/flexsw/flexsw/sw"
)

func rates(args []RateArg) (rates []meter.RateConfig) {
	for _, r := range args {
		rates = append(rates, meter.RateConfig{InfoRate: r.InfoRate, Burst: r.Burst})
	}
	return rates
}

// CounterMgmt manages counter arrays.
type CounterMgmt struct {
	Sw *sw.Switch
}

// Read returns one counter cell.
func (mg CounterMgmt) Read(args IndexArg, reply *CounterReply) error {
	bytes, packets, e := mg.Sw.ReadCounters(args.Cxt, args.Name, args.Index)
	if e != nil {
		return e
	}
	reply.Bytes, reply.Packets = bytes, packets
	return nil
}

// Write overwrites one counter cell.
func (mg CounterMgmt) Write(args CounterWriteArg, reply *struct{}) error {
	return mg.Sw.WriteCounters(args.Cxt, args.Name, args.Index, args.Bytes, args.Packets)
}

// Reset zeroes a counter array.
func (mg CounterMgmt) Reset(args NameArg, reply *struct{}) error {
	return mg.Sw.ResetCounters(args.Cxt, args.Name)
}

// MeterMgmt manages meter arrays.
type MeterMgmt struct {
	Sw *sw.Switch
}

// SetRates configures one meter.
func (mg MeterMgmt) SetRates(args MeterSetArg, reply *struct{}) error {
	return mg.Sw.MeterSetRates(args.Cxt, args.Name, args.Index, rates(args.Rates))
}

// SetArrayRates configures every meter of an array.
func (mg MeterMgmt) SetArrayRates(args MeterArraySetArg, reply *struct{}) error {
	return mg.Sw.MeterArraySetRates(args.Cxt, args.Name, rates(args.Rates))
}

// GetRates returns the rates of one meter.
func (mg MeterMgmt) GetRates(args IndexArg, reply *MeterRatesReply) error {
	configured, e := mg.Sw.MeterGetRates(args.Cxt, args.Name, args.Index)
	if e != nil {
		return e
	}
	for _, r := range configured {
		reply.Rates = append(reply.Rates, RateArg{InfoRate: r.InfoRate, Burst: r.Burst})
	}
	return nil
}

// ResetRates clears the rates of one meter.
func (mg MeterMgmt) ResetRates(args IndexArg, reply *struct{}) error {
	return mg.Sw.MeterResetRates(args.Cxt, args.Name, args.Index)
}

// RegisterMgmt manages register arrays.
type RegisterMgmt struct {
	Sw *sw.Switch
}

// Read returns one register cell.
func (mg RegisterMgmt) Read(args IndexArg, reply *RegisterReadReply) error {
	v, e := mg.Sw.RegisterRead(args.Cxt, args.Name, args.Index)
	if e != nil {
		return e
	}
	reply.Value = v
	return nil
}

// ReadAll returns every register cell.
func (mg RegisterMgmt) ReadAll(args NameArg, reply *RegisterReadAllReply) error {
	values, e := mg.Sw.RegisterReadAll(args.Cxt, args.Name)
	if e != nil {
		return e
	}
	reply.Values = values
	return nil
}

// Write stores one register cell.
func (mg RegisterMgmt) Write(args RegisterWriteArg, reply *struct{}) error {
	return mg.Sw.RegisterWrite(args.Cxt, args.Name, args.Index, args.Value)
}

// WriteRange stores a value in cells [start, end).
func (mg RegisterMgmt) WriteRange(args RegisterWriteRangeArg, reply *struct{}) error {
	return mg.Sw.RegisterWriteRange(args.Cxt, args.Name, args.Start, args.End, args.Value)
}

// Reset zeroes a register array.
func (mg RegisterMgmt) Reset(args NameArg, reply *struct{}) error {
	return mg.Sw.RegisterReset(args.Cxt, args.Name)
}

// VsetMgmt manages parse value sets.
type VsetMgmt struct {
	Sw *sw.Switch
}

// Add inserts a value.
func (mg VsetMgmt) Add(args VsetValueArg, reply *struct{}) error {
	value, e := hex.DecodeString(args.Value)
	if e != nil {
		return e
	}
	return mg.Sw.ParseVSetAdd(args.Cxt, args.Name, value)
}

// Remove deletes a value.
func (mg VsetMgmt) Remove(args VsetValueArg, reply *struct{}) error {
	value, e := hex.DecodeString(args.Value)
	if e != nil {
		return e
	}
	return mg.Sw.ParseVSetRemove(args.Cxt, args.Name, value)
}

// Get returns every value.
func (mg VsetMgmt) Get(args NameArg, reply *VsetGetReply) error {
	values, e := mg.Sw.ParseVSetGet(args.Cxt, args.Name)
	if e != nil {
		return e
	}
	reply.Values = make([]string, 0, len(values))
	for _, v := range values {
		reply.Values = append(reply.Values, hex.EncodeToString(v))
	}
	return nil
}

// Clear removes every value.
func (mg VsetMgmt) Clear(args NameArg, reply *struct{}) error {
	return mg.Sw.ParseVSetClear(args.Cxt, args.Name)
}

// CrcMgmt customizes CRC calculators.
type CrcMgmt struct {
	Sw *sw.Switch
}

// SetCrc16Parameters updates a 16-bit calculator.
func (mg CrcMgmt) SetCrc16Parameters(args Crc16Arg, reply *struct{}) error {
	return mg.Sw.SetCRC16CustomParams(args.Cxt, args.Name, crcmgr.Config16{
		Polynomial:       args.Polynomial,
		InitialValue:     args.InitialValue,
		FinalXorValue:    args.FinalXorValue,
		DataReflected:    args.DataReflected,
		RemainderReflect: args.RemainderReflected,
	})
}

// SetCrc32Parameters updates a 32-bit calculator.
func (mg CrcMgmt) SetCrc32Parameters(args Crc32Arg, reply *struct{}) error {
	return mg.Sw.SetCRC32CustomParams(args.Cxt, args.Name, crcmgr.Config32{
		Polynomial:       args.Polynomial,
		InitialValue:     args.InitialValue,
		FinalXorValue:    args.FinalXorValue,
		DataReflected:    args.DataReflected,
		RemainderReflect: args.RemainderReflected,
	})
}
