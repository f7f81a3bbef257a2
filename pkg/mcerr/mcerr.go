// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package mcerr

// Code enumerates the run-time recoverable and lifecycle error conditions
// the engine can report.
type Code int

const (
	NoError Code = iota
	ClockResolution
	UnknownOption
	NoClock
	Busy
	InvalidArgument
	JsonParse
	JsonConfig
	IncompatibleUuid
	IncompatibleRom
	IncompatibleRam
	NotImplemented
)

func (c Code) String() string {
	switch c {
	case NoError:
		return "NoError"
	case ClockResolution:
		return "ClockResolution"
	case UnknownOption:
		return "UnknownOption"
	case NoClock:
		return "NoClock"
	case Busy:
		return "Busy"
	case InvalidArgument:
		return "InvalidArgument"
	case JsonParse:
		return "JsonParse"
	case JsonConfig:
		return "JsonConfig"
	case IncompatibleUuid:
		return "IncompatibleUuid"
	case IncompatibleRom:
		return "IncompatibleRom"
	case IncompatibleRam:
		return "IncompatibleRam"
	case NotImplemented:
		return "NotImplemented"
	default:
		return "Unknown"
	}
}

// Error wraps a Code with a human-readable message. It implements error.
type Error struct {
	Code Code
	Msg  string
}

func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}

	return e.Code.String() + ": " + e.Msg
}
