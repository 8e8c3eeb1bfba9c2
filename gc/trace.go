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
package gc

import "io"
import "os"
import "sync"
import "time"
import "path/filepath"
import "encoding/json"

// Tracefile writes events in the Chrome trace event format (load the file in
// chrome://tracing or Perfetto).
type Tracefile struct {
	isFirst bool
	file    io.WriteCloser
	start   time.Time
	m       sync.Mutex
}

// EnableTrace starts tracing collections of h into dir/trace_<heap id>.json.
// Passing an empty dir stops tracing.
func (h *Heap) EnableTrace(dir string) error {
	if h.Trace != nil {
		h.Trace.Close()
		h.Trace = nil
	}
	if dir == "" {
		return nil
	}
	f, err := os.Create(filepath.Join(dir, "trace_"+h.ID.String()+".json"))
	if err != nil {
		return err
	}
	h.Trace = NewTrace(f)
	return nil
}

func NewTrace(file io.WriteCloser) *Tracefile {
	file.Write([]byte("["))
	result := new(Tracefile)
	result.file = file
	result.isFirst = true
	result.start = time.Now()
	return result
}

func (t *Tracefile) Close() {
	t.file.Write([]byte("]"))
	t.file.Close()
}

func (t *Tracefile) Duration(name string, cat string, f func()) {
	t.Event(name, cat, "B")
	defer t.Event(name, cat, "E")
	f()
}

func (t *Tracefile) Event(name string, cat string, typ string) {
	t.EventFull(name, cat, typ, time.Since(t.start).Microseconds(), 0, 0)
}

/*
	@name string event name
	@cat string comma separated categories (for filtering)
	@typ B/E for begin/end, X for events
	@ts timestamp in microseconds
	@tid thread id
	@pid process id
*/
func (t *Tracefile) EventFull(name string, cat string, typ string, ts int64, tid int, pid int) {
	t.m.Lock()
	defer t.m.Unlock()
	if t.isFirst {
		t.isFirst = false
	} else {
		t.file.Write([]byte(",\n"))
	}
	b, _ := json.Marshal(struct {
		Name  string `json:"name"`
		Cat   string `json:"cat"`
		Ph    string `json:"ph"`
		Ts    int64  `json:"ts"`
		Pid   int    `json:"pid"`
		Tid   int    `json:"tid"`
		Scope string `json:"s"`
	}{name, cat, typ, ts, pid, tid, "g"})
	t.file.Write(b)
}
