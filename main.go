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
/*
	lvm: a small lisp on a region based copying garbage collector

*/
package main

import "os"
import "fmt"
import "flag"
import "sync"
import "time"
import "syscall"
import "os/signal"
import "crypto/rand"
import "path/filepath"
import "github.com/google/uuid"
import "github.com/dc0d/onexit"
import "github.com/docker/go-units"
import "github.com/fsnotify/fsnotify"
import "github.com/launix-de/go-mysqlstack/xlog"
import "github.com/launix-de/lvm/gc"
import "github.com/launix-de/lvm/scm"

func getImport(path string) scm.Native {
	return func(in *scm.Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
		h := in.Heap
		if h.Tag(a[0]) != gc.TagString {
			return h.NewError("import: filename must be a string")
		}
		filename := filepath.Join(path, h.Text(a[0]))
		content, err := scm.ReadScript(filename)
		if err != nil {
			return h.NewError("import: %v", err)
		}
		return in.EvalAll(filename, content)
	}
}

func getLoad(path string) scm.Native {
	return func(in *scm.Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
		h := in.Heap
		if h.Tag(a[0]) != gc.TagString {
			return h.NewError("load: filename must be a string")
		}
		content, err := scm.ReadScript(filepath.Join(path, h.Text(a[0])))
		if err != nil {
			return h.NewError("load: %v", err)
		}
		return h.NewString(content)
	}
}

// watchFile calls reread now and after every change of filename. reread runs
// with the interpreter locked.
func watchFile(in *scm.Interpreter, filename string, reread func()) error {
	reread() // read once at the beginning in sync
	// watch for changes
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-watcher.Events:
				// flush all other events
				for {
					time.Sleep(10 * time.Millisecond) // delay a bit, so we don't read empty files
					select {
					case <-watcher.Events:
						// ignore
					default:
						goto to_reread
					}
				}
			to_reread:
				// now reread the file
				func() {
					in.Lock()
					defer in.Unlock()
					defer func() {
						if err := recover(); err != nil {
							if _, ok := err.(gc.FatalError); ok {
								panic(err)
							}
							// error happens during reload: log to console
							fmt.Println(err)
						}
					}()
					reread()
				}()
				watcher.Add(filename) // text editors rename, so we have to rewatch
			case err := <-watcher.Errors:
				fmt.Println("watch:", err)
			}
		}
	}()
	return watcher.Add(filename)
}

// getWatch keeps the handler in a global binding so collections see it.
func getWatch(path string) scm.Native {
	return func(in *scm.Interpreter, a []gc.Atom, env *gc.Env) gc.Atom {
		h := in.Heap
		if h.Tag(a[0]) != gc.TagString {
			return h.NewError("watch: filename must be a string")
		}
		filename := filepath.Join(path, h.Text(a[0]))
		slot := h.Symbol("watch:" + filename)
		in.Global.Define(slot, a[1])
		err := watchFile(in, filename, func() {
			content, err := scm.ReadScript(filename)
			if err != nil {
				fmt.Println("watch:", err)
				return
			}
			handler, _ := in.Global.Lookup(slot)
			if result := in.Apply(handler, h.NewString(content)); h.IsError(result) {
				fmt.Println(filename+":", in.String(result))
			}
		})
		if err != nil {
			return h.NewError("watch: %v", err)
		}
		return h.True()
	}
}

// workaround for flags package to allow multiple values
type arrayFlags []string

func (i *arrayFlags) String() string {
	return "dummy"
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func setupIO(wd string) {
	// define some IO functions (scm will not provide them since it is sandboxable)
	scm.DeclareTitle("Files")
	scm.Declare(&scm.Declaration{
		Name: "import", Desc: "evaluates a source file (plain, .xz or .lz4) in the global environment",
		MinParameter: 1, MaxParameter: 1,
		Params: []scm.DeclarationParameter{
			scm.DeclarationParameter{Name: "filename", Type: "string", Desc: "filename relative to the working directory"},
		}, Returns: "any",
		Fn: getImport(wd),
	})
	scm.Declare(&scm.Declaration{
		Name: "load", Desc: "loads a file (plain, .xz or .lz4) and returns the string",
		MinParameter: 1, MaxParameter: 1,
		Params: []scm.DeclarationParameter{
			scm.DeclarationParameter{Name: "filename", Type: "string", Desc: "filename relative to the working directory"},
		}, Returns: "string",
		Fn: getLoad(wd),
	})
	scm.Declare(&scm.Declaration{
		Name: "watch", Desc: "loads a file and calls the callback. Whenever the file changes on disk, the file is loaded again.",
		MinParameter: 2, MaxParameter: 2,
		Params: []scm.DeclarationParameter{
			scm.DeclarationParameter{Name: "filename", Type: "string", Desc: "filename relative to the working directory"},
			scm.DeclarationParameter{Name: "updatehandler", Type: "func", Desc: "handler that receives the file content func(content)"},
		}, Returns: "bool",
		Fn: getWatch(wd),
	})
}

func heapConfig(regionSize, collectAfter, loglevel string) (gc.Config, error) {
	config := gc.DefaultConfig()
	size, err := units.RAMInBytes(regionSize)
	if err != nil {
		return config, fmt.Errorf("-region-size: %w", err)
	}
	config.RegionSize = int(size)
	if config.CollectAfter, err = units.RAMInBytes(collectAfter); err != nil {
		return config, fmt.Errorf("-collect-after: %w", err)
	}
	switch loglevel {
	case "debug":
		config.Log = xlog.NewStdLog(xlog.Level(xlog.DEBUG))
	case "info":
		config.Log = xlog.NewStdLog(xlog.Level(xlog.INFO))
	case "warning":
		config.Log = xlog.NewStdLog(xlog.Level(xlog.WARNING))
	case "error":
		config.Log = xlog.NewStdLog(xlog.Level(xlog.ERROR))
	default:
		return config, fmt.Errorf("-loglevel: unknown level %q", loglevel)
	}
	return config, nil
}

func main() {
	fmt.Print(`lvm Copyright (C) 2026  LVM Contributors
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	// init random generator for UUIDs
	uuid.SetRand(rand.Reader)

	// parse command line options
	var commands arrayFlags
	flag.Var(&commands, "c", "Execute scm command")
	var watches arrayFlags
	flag.Var(&watches, "watch", "Evaluate a script and evaluate it again whenever it changes")

	regionSize := flag.String("region-size", units.BytesSize(gc.DefaultRegionSize), "Size of a heap region, e.g. 16MiB")
	collectAfter := flag.String("collect-after", "0", "Request a collection after this many allocated bytes (0 = when new space grows)")
	loglevel := flag.String("loglevel", "error", "Log level: debug, info, warning or error")
	tracedir := flag.String("trace", "", "Write a JSON trace of all collections into this folder")
	tracePrint := flag.Bool("trace-print", false, "Print heap statistics after every collection")

	wd, _ := os.Getwd() // libraries are relative to working directory... or change with -wd PATH
	flag.StringVar(&wd, "wd", wd, "Working Directory for (import), (load) and (watch) (Default: .)")

	flag.Parse()
	imports := flag.Args()

	config, err := heapConfig(*regionSize, *collectAfter, *loglevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupIO(wd)
	heap, err := gc.NewHeap(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	in := scm.New(heap)
	in.Settings.TracePrint = *tracePrint
	if *tracedir != "" {
		in.Settings.TraceDir = *tracedir
		if err := in.SetTrace(true); err != nil {
			fmt.Fprintln(os.Stderr, "trace:", err)
			os.Exit(2)
		}
	}
	onexit.Register(func() { shutdown(in) }) // unmap regions, close trace file on exit

	// scripts initialization
	in.Lock()
	for _, scmfile := range imports {
		fmt.Println("Loading " + scmfile + " ...")
		protect(func() {
			content, err := scm.ReadScript(filepath.Join(wd, scmfile))
			if err != nil {
				fmt.Println(err)
				return
			}
			if result := in.EvalAll(scmfile, content); heap.IsError(result) {
				fmt.Println(in.String(result))
			}
		})
	}
	for _, scmfile := range watches {
		filename := filepath.Join(wd, scmfile)
		fmt.Println("Watching " + scmfile + " ...")
		protect(func() {
			err := watchFile(in, filename, func() {
				content, err := scm.ReadScript(filename)
				if err != nil {
					fmt.Println("watch:", err)
					return
				}
				if result := in.EvalAll(filename, content); heap.IsError(result) {
					fmt.Println(filename+":", in.String(result))
				}
			})
			if err != nil {
				fmt.Println("watch:", err)
			}
		})
	}
	for _, command := range commands {
		fmt.Println("Executing " + command + " ...")
		protect(func() {
			fmt.Println(in.String(in.EvalAll("command line", command)))
		})
	}
	in.Unlock()

	// install exit handler
	cancelChan := make(chan os.Signal, 1)
	signal.Notify(cancelChan, syscall.SIGTERM, syscall.SIGINT)
	go (func() {
		<-cancelChan
		shutdown(in)
		os.Exit(1)
	})()

	fmt.Print(`
    Type (help) to show help

`)

	// REPL shell
	scm.Repl(in)

	// normal shutdown
	shutdown(in)
}

// protect prints recovered reader errors and lets fatal heap errors through.
func protect(f func()) {
	defer func() {
		if err := recover(); err != nil {
			if _, ok := err.(gc.FatalError); ok {
				panic(err)
			}
			fmt.Println(err)
		}
	}()
	f()
}

var shutdownOnce sync.Once

func shutdown(in *scm.Interpreter) {
	shutdownOnce.Do(func() {
		if !in.TryLock() {
			// still evaluating, the OS takes the mappings with the process
			fmt.Println("Exit procedure: interpreter busy")
			return
		}
		defer in.Unlock()
		fmt.Println("Exit procedure: collections:", in.Heap.Stats().Collections)
		in.Heap.Release()
	})
}
