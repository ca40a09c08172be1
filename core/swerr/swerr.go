// Package swerr defines structured error codes returned by the switch runtime.
package swerr

import (
	"errors"
	"fmt"
)

// Code identifies a kind of runtime error.
type Code int

// Runtime error kinds.
const (
	Success Code = iota
	ContextOutOfRange
	TableNotFound
	ActionNotFound
	InvalidHandle
	DuplicateEntry
	PriorityRequired
	ConfigParseError
	RequiredFieldMissing
	ObjectsInitFail
	OpenJSONFileFail
	OpenJSONStreamFail
	OpenPlanFileFail
	OpenOutputFileFail
	PrefixError
	DupCheckError
	UnfoundIDError
	InvalidCommandError
	HashFunctionNotFound
	StateMismatch
	NoOngoingSwap
	OngoingSwap
	SwapNotifyError
	ActProfNotFound
	WrongTableType
	MemberNotFound
	GroupNotFound
	CounterNotFound
	MeterNotFound
	RegisterNotFound
	ParseVSetNotFound
	PipelineNotFound
	NodeNotFound
	InvalidIndex
	InvalidMeterOperation
	ExternNotFound
	UnsupportedTargetError
	DeleteIDFail
)

var codeNames = map[Code]string{
	Success:                "SUCCESS",
	ContextOutOfRange:      "CONTEXT_OUT_OF_RANGE",
	TableNotFound:          "TABLE_NOT_FOUND",
	ActionNotFound:         "ACTION_NOT_FOUND",
	InvalidHandle:          "INVALID_HANDLE",
	DuplicateEntry:         "DUPLICATE_ENTRY",
	PriorityRequired:       "PRIORITY_REQUIRED",
	ConfigParseError:       "CONFIG_PARSE_ERROR",
	RequiredFieldMissing:   "REQUIRED_FIELD_MISSING",
	ObjectsInitFail:        "P4OBJECTS_INIT_FAIL",
	OpenJSONFileFail:       "OPEN_JSON_FILE_FAIL",
	OpenJSONStreamFail:     "OPEN_JSON_STREAM_FAIL",
	OpenPlanFileFail:       "OPEN_PLAN_FILE_FAIL",
	OpenOutputFileFail:     "OPEN_OUTPUT_FILE_FAIL",
	PrefixError:            "PREFIX_ERROR",
	DupCheckError:          "DUP_CHECK_ERROR",
	UnfoundIDError:         "UNFOUND_ID_ERROR",
	InvalidCommandError:    "INVALID_COMMAND_ERROR",
	HashFunctionNotFound:   "HASH_FUNCTION_NOT_FOUND",
	StateMismatch:          "STATE_MISMATCH",
	NoOngoingSwap:          "NO_ONGOING_SWAP",
	OngoingSwap:            "ONGOING_SWAP",
	SwapNotifyError:        "SWAP_NOTIFY_ERROR",
	ActProfNotFound:        "ACT_PROF_NOT_FOUND",
	WrongTableType:         "WRONG_TABLE_TYPE",
	MemberNotFound:         "MEMBER_NOT_FOUND",
	GroupNotFound:          "GROUP_NOT_FOUND",
	CounterNotFound:        "COUNTER_NOT_FOUND",
	MeterNotFound:          "METER_NOT_FOUND",
	RegisterNotFound:       "REGISTER_NOT_FOUND",
	ParseVSetNotFound:      "PARSE_VSET_NOT_FOUND",
	PipelineNotFound:       "PIPELINE_NOT_FOUND",
	NodeNotFound:           "NODE_NOT_FOUND",
	InvalidIndex:           "INVALID_INDEX",
	InvalidMeterOperation:  "INVALID_METER_OPERATION",
	ExternNotFound:         "EXTERN_NOT_FOUND",
	UnsupportedTargetError: "UNSUPPORTED_TARGET_ERROR",
	DeleteIDFail:           "DELETE_ID_FAIL",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is a runtime error with a code and optional detail.
type Error struct {
	Code   Code
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Detail
}

// Is matches errors carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with a code and formatted detail.
func New(c Code, format string, args ...any) error {
	return &Error{Code: c, Detail: fmt.Sprintf(format, args...)}
}

// E creates an Error with a bare code.
func E(c Code) error {
	return &Error{Code: c}
}

// CodeOf extracts the Code from an error chain.
// nil maps to Success; an error without a Code maps to InvalidCommandError.
func CodeOf(e error) Code {
	if e == nil {
		return Success
	}
	var t *Error
	if errors.As(e, &t) {
		return t.Code
	}
	return InvalidCommandError
}

// Names returns the code-to-name map, for exposing error codes to the control plane.
func Names() map[int]string {
	m := make(map[int]string, len(codeNames))
	for c, n := range codeNames {
		m[int(c)] = n
	}
	return m
}
