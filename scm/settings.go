/*
Copyright (C) 2026  LVM Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import "github.com/launix-de/lvm/gc"

type SettingsT struct {
	Backtrace    bool   // print Go stack traces for recovered panics in the REPL
	Trace        bool   // write collection events to a trace file
	TraceDir     string // folder for trace files
	TracePrint   bool   // print heap statistics after every collection
	CollectAfter int64  // bytes allocated before a collection is requested, 0 = on region growth only
}

func DefaultSettings(heap *gc.Heap) SettingsT {
	return SettingsT{false, heap.Trace != nil, ".", false, heap.Config().CollectAfter}
}

// ChangeSettings lists, reads or writes a setting. It returns an error record
// for unknown names or values of the wrong type.
func (in *Interpreter) ChangeSettings(a []gc.Atom) gc.Atom {
	h := in.Heap
	if len(a) == 0 {
		return in.list([]gc.Atom{
			h.NewString("Backtrace"), h.Bool(in.Settings.Backtrace),
			h.NewString("Trace"), h.Bool(in.Settings.Trace),
			h.NewString("TraceDir"), h.NewString(in.Settings.TraceDir),
			h.NewString("TracePrint"), h.Bool(in.Settings.TracePrint),
			h.NewString("CollectAfter"), h.NewInt(in.Settings.CollectAfter),
		})
	}
	if !h.Tag(a[0]).HasText() {
		return h.NewError("settings: name must be a string, got %s", in.String(a[0]))
	}
	name := h.Text(a[0])
	if len(a) == 1 {
		switch name {
		case "Backtrace":
			return h.Bool(in.Settings.Backtrace)
		case "Trace":
			return h.Bool(in.Settings.Trace)
		case "TraceDir":
			return h.NewString(in.Settings.TraceDir)
		case "TracePrint":
			return h.Bool(in.Settings.TracePrint)
		case "CollectAfter":
			return h.NewInt(in.Settings.CollectAfter)
		default:
			return h.NewError("unknown setting: %s", name)
		}
	}
	switch name {
	case "Backtrace":
		in.Settings.Backtrace = h.Truthy(a[1])
	case "Trace":
		if err := in.SetTrace(h.Truthy(a[1])); err != nil {
			return h.NewError("settings: %v", err)
		}
	case "TraceDir":
		if h.Tag(a[1]) != gc.TagString {
			return h.NewError("settings: TraceDir must be a string")
		}
		in.Settings.TraceDir = h.Text(a[1])
	case "TracePrint":
		in.Settings.TracePrint = h.Truthy(a[1])
	case "CollectAfter":
		if h.Tag(a[1]) != gc.TagInt || h.Int(a[1]) < 0 {
			return h.NewError("settings: CollectAfter must be a non-negative integer")
		}
		in.Settings.CollectAfter = h.Int(a[1])
		h.SetCollectAfter(in.Settings.CollectAfter)
	default:
		return h.NewError("unknown setting: %s", name)
	}
	return h.True()
}

// SetTrace opens or closes the heap's trace file.
func (in *Interpreter) SetTrace(on bool) error {
	dir := ""
	if on {
		dir = in.Settings.TraceDir
	}
	if err := in.Heap.EnableTrace(dir); err != nil {
		return err
	}
	in.Settings.Trace = on
	return nil
}
