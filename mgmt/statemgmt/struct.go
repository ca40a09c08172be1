package statemgmt

// NameArg names an object of one context.
type NameArg struct {
	Cxt  int    `json:"cxt"`
	Name string `json:"name"`
}

// IndexArg addresses one cell of an array.
type IndexArg struct {
	NameArg
	Index int `json:"index"`
}

// CounterReply carries one counter cell.
type CounterReply struct {
	Bytes   uint64 `json:"bytes"`
	Packets uint64 `json:"packets"`
}

// CounterWriteArg overwrites one counter cell.
type CounterWriteArg struct {
	IndexArg
	Bytes   uint64 `json:"bytes"`
	Packets uint64 `json:"packets"`
}

// RateArg is one meter rate config.
type RateArg struct {
	InfoRate float64 `json:"infoRate"`
	Burst    uint32  `json:"burst"`
}

// MeterSetArg configures one meter.
type MeterSetArg struct {
	IndexArg
	Rates []RateArg `json:"rates"`
}

// MeterArraySetArg configures every meter of an array.
type MeterArraySetArg struct {
	NameArg
	Rates []RateArg `json:"rates"`
}

// MeterRatesReply carries meter rates.
type MeterRatesReply struct {
	Rates []RateArg `json:"rates"`
}

// RegisterReadReply carries one register cell.
type RegisterReadReply struct {
	Value uint64 `json:"value"`
}

// RegisterReadAllReply carries every register cell.
type RegisterReadAllReply struct {
	Values []uint64 `json:"values"`
}

// RegisterWriteArg stores one register cell.
type RegisterWriteArg struct {
	IndexArg
	Value uint64 `json:"value"`
}

// RegisterWriteRangeArg stores cells [Start, End).
type RegisterWriteRangeArg struct {
	NameArg
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value uint64 `json:"value"`
}

// VsetValueArg carries a parse vset value in hexadecimal.
type VsetValueArg struct {
	NameArg
	Value string `json:"value"`
}

// VsetGetReply carries parse vset values in hexadecimal.
type VsetGetReply struct {
	Values []string `json:"values"`
}

// Crc16Arg customizes a 16-bit CRC calculator.
type Crc16Arg struct {
	NameArg
	Polynomial         uint16 `json:"polynomial"`
	InitialValue       uint16 `json:"initialValue"`
	FinalXorValue      uint16 `json:"finalXorValue"`
	DataReflected      bool   `json:"dataReflected"`
	RemainderReflected bool   `json:"remainderReflected"`
}

// Crc32Arg customizes a 32-bit CRC calculator.
type Crc32Arg struct {
	NameArg
	Polynomial         uint32 `json:"polynomial"`
	InitialValue       uint32 `json:"initialValue"`
	FinalXorValue      uint32 `json:"finalXorValue"`
	DataReflected      bool   `json:"dataReflected"`
	RemainderReflected bool   `json:"remainderReflected"`
}
