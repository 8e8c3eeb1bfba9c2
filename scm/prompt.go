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

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/chzyer/readline"
	"github.com/launix-de/lvm/gc"
)

const newprompt = "\033[32m>\033[0m "
const contprompt = "\033[32m.\033[0m "
const resultprompt = "\033[31m=\033[0m "

// symbolCompleter completes the word left of the cursor from the interned
// symbols.
type symbolCompleter struct {
	in *Interpreter
}

func (c symbolCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	start := pos
	for start > 0 && !strings.ContainsRune(" \t\n()'\"", line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	c.in.Lock()
	names := c.in.Heap.SymbolsWithPrefix(prefix)
	c.in.Unlock()
	for _, name := range names {
		newLine = append(newLine, []rune(name[len(prefix):]))
	}
	return newLine, len([]rune(prefix))
}

// Repl reads lines from the terminal and evaluates them until EOF. Reader
// errors and Go panics are printed, a gc.FatalError ends the process.
func Repl(in *Interpreter) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       ".lvm-history.tmp",
		AutoComplete:      symbolCompleter{in},
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				oldline = ""
				l.SetPrompt(newprompt)
				continue
			}
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if in.EvalLine(l.Stdout(), line) {
			oldline = ""
			l.SetPrompt(newprompt)
		} else {
			oldline = line + "\n"
			l.SetPrompt(contprompt)
		}
	}
}

// EvalLine evaluates one line of user input and prints the result to w. It
// returns false if the input is incomplete and more lines are needed.
func (in *Interpreter) EvalLine(w io.Writer, line string) (complete bool) {
	in.Lock()
	defer in.Unlock()
	// anti-panic func
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(gc.FatalError); ok {
				panic(r)
			}
			in.abort()
			if msg, ok := r.(string); ok && strings.HasSuffix(msg, "expecting matching )") {
				// keep oldline
				complete = false
				return
			}
			if in.Settings.Backtrace {
				fmt.Fprintln(w, "panic:", r, string(debug.Stack()))
			} else {
				fmt.Fprintln(w, "panic:", r)
			}
			complete = true
		}
	}()
	result := in.EvalAll("user prompt", line)
	fmt.Fprint(w, resultprompt)
	fmt.Fprintln(w, in.String(result))
	return true
}
