// Package crcmgr manages named CRC calculators with control-plane customizable parameters.
package crcmgr

import (
	"math/bits"
	"sync"

	"github.com/flexsw/flexsw/core/swerr"
)

// Config16 parameterizes a 16-bit CRC calculator.
type Config16 struct {
	Polynomial       uint16 `json:"polynomial"`
	InitialValue     uint16 `json:"initialValue"`
	FinalXorValue    uint16 `json:"finalXorValue"`
	DataReflected    bool   `json:"dataReflected"`
	RemainderReflect bool   `json:"remainderReflected"`
}

// Config32 parameterizes a 32-bit CRC calculator.
type Config32 struct {
	Polynomial       uint32 `json:"polynomial"`
	InitialValue     uint32 `json:"initialValue"`
	FinalXorValue    uint32 `json:"finalXorValue"`
	DataReflected    bool   `json:"dataReflected"`
	RemainderReflect bool   `json:"remainderReflected"`
}

// Calc16 is a named 16-bit calculator.
type Calc16 struct {
	mu  sync.Mutex
	cfg Config16
}

// Update replaces the calculator parameters.
func (c *Calc16) Update(cfg Config16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Compute calculates the checksum of input.
func (c *Calc16) Compute(input []byte) uint16 {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()

	remainder := cfg.InitialValue
	for _, octet := range input {
		if cfg.DataReflected {
			octet = bits.Reverse8(octet)
		}
		remainder ^= uint16(octet) << 8
		for bit := 0; bit < 8; bit++ {
			if remainder&0x8000 != 0 {
				remainder = remainder<<1 ^ cfg.Polynomial
			} else {
				remainder <<= 1
			}
		}
	}
	if cfg.RemainderReflect {
		remainder = bits.Reverse16(remainder)
	}
	return remainder ^ cfg.FinalXorValue
}

// Calc32 is a named 32-bit calculator.
type Calc32 struct {
	mu  sync.Mutex
	cfg Config32
}

// Update replaces the calculator parameters.
func (c *Calc32) Update(cfg Config32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// Compute calculates the checksum of input.
func (c *Calc32) Compute(input []byte) uint32 {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()

	remainder := cfg.InitialValue
	for _, octet := range input {
		if cfg.DataReflected {
			octet = bits.Reverse8(octet)
		}
		remainder ^= uint32(octet) << 24
		for bit := 0; bit < 8; bit++ {
			if remainder&0x80000000 != 0 {
				remainder = remainder<<1 ^ cfg.Polynomial
			} else {
				remainder <<= 1
			}
		}
	}
	if cfg.RemainderReflect {
		remainder = bits.Reverse32(remainder)
	}
	return remainder ^ cfg.FinalXorValue
}

// Mgr holds the named calculators of one configuration.
type Mgr struct {
	mu     sync.Mutex
	calc16 map[string]*Calc16
	calc32 map[string]*Calc32
}

// NewMgr creates an empty calculator manager.
func NewMgr() *Mgr {
	return &Mgr{
		calc16: map[string]*Calc16{},
		calc32: map[string]*Calc32{},
	}
}

// Register adds a calculator under a name, choosing width by algo.
// Algos other than crc16 and crc32 are not customizable and are ignored.
func (m *Mgr) Register(name, algo string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch algo {
	case "crc16":
		m.calc16[name] = &Calc16{cfg: Config16{Polynomial: 0x8005, DataReflected: true, RemainderReflect: true}}
	case "crc32":
		m.calc32[name] = &Calc32{cfg: Config32{Polynomial: 0x04C11DB7, InitialValue: 0xFFFFFFFF, FinalXorValue: 0xFFFFFFFF, DataReflected: true, RemainderReflect: true}}
	}
}

// Calc16 returns a 16-bit calculator by name.
func (m *Mgr) Calc16(name string) (*Calc16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.calc16[name]; ok {
		return c, nil
	}
	return nil, swerr.New(swerr.HashFunctionNotFound, "no crc16 calculation %s", name)
}

// Calc32 returns a 32-bit calculator by name.
func (m *Mgr) Calc32(name string) (*Calc32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.calc32[name]; ok {
		return c, nil
	}
	return nil, swerr.New(swerr.HashFunctionNotFound, "no crc32 calculation %s", name)
}

// SetCustom16 updates the parameters of a 16-bit calculator.
func (m *Mgr) SetCustom16(name string, cfg Config16) error {
	c, e := m.Calc16(name)
	if e != nil {
		return e
	}
	c.Update(cfg)
	return nil
}

// SetCustom32 updates the parameters of a 32-bit calculator.
func (m *Mgr) SetCustom32(name string, cfg Config32) error {
	c, e := m.Calc32(name)
	if e != nil {
		return e
	}
	c.Update(cfg)
	return nil
}
