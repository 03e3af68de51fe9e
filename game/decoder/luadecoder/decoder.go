// Package luadecoder runs a user supplied Lua script as the puzzle decoder.
//
// The script must define a global function
//
//	function evaluate(state) return parity, clusters end
//
// where state carries k, l, p, lattice (rows of columns, 1-based), colors,
// boundary_charge, nodes and edges. Nodes expose a 0-based index field; edges
// are {a, b} pairs of those indices. parity is nil or {left, right}; clusters
// is nil or a table mapping node index to a 0-based palette slot.
package luadecoder

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/wricardo/decodoku/game/engine"
	"github.com/wricardo/decodoku/game/render"
)

// ErrNoEvaluate is returned when the script does not define evaluate
var ErrNoEvaluate = errors.New("lua script does not define evaluate(state)")

// Decoder implements render.Decoder on top of a Lua state. Calls are
// serialized because a Lua state is single threaded.
type Decoder struct {
	mu     sync.Mutex
	state  *lua.State
	source string
}

// New compiles source and checks that it defines evaluate
func New(source string) (*Decoder, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := lua.DoString(l, source); err != nil {
		return nil, fmt.Errorf("load lua decoder: %w", err)
	}
	return newDecoder(l, "<string>")
}

// Load reads a script from path
func Load(path string) (*Decoder, error) {
	l := lua.NewState()
	lua.OpenLibraries(l)
	if err := lua.LoadFile(l, path, ""); err != nil {
		return nil, fmt.Errorf("load lua decoder %s: %w", path, err)
	}
	if err := l.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua decoder %s: %w", path, err)
	}
	return newDecoder(l, path)
}

func newDecoder(l *lua.State, source string) (*Decoder, error) {
	l.Global("evaluate")
	defined := l.IsFunction(-1)
	l.Pop(1)
	if !defined {
		return nil, fmt.Errorf("%s: %w", source, ErrNoEvaluate)
	}
	return &Decoder{state: l, source: source}, nil
}

// Source names where the script came from
func (d *Decoder) Source() string {
	return d.source
}

// Evaluate implements render.Decoder
func (d *Decoder) Evaluate(state *engine.PuzzleState) (render.Evaluation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	l := d.state
	l.SetTop(0)
	defer l.SetTop(0)

	l.Global("evaluate")
	pushState(l, state)
	if err := l.ProtectedCall(1, 2, 0); err != nil {
		return render.Evaluation{}, fmt.Errorf("lua evaluate: %w", err)
	}

	parity, err := readParity(l, l.AbsIndex(-2))
	if err != nil {
		return render.Evaluation{}, err
	}
	clusters, err := readClusters(l, l.AbsIndex(-1))
	if err != nil {
		return render.Evaluation{}, err
	}
	return render.Evaluation{Parity: parity, Clusters: clusters}, nil
}

func pushState(l *lua.State, s *engine.PuzzleState) {
	l.NewTable()
	l.PushInteger(s.K)
	l.SetField(-2, "k")
	l.PushInteger(s.L)
	l.SetField(-2, "l")
	l.PushNumber(s.P)
	l.SetField(-2, "p")

	pushInts(l, s.BoundaryCharge[:])
	l.SetField(-2, "boundary_charge")

	l.CreateTable(len(s.Lattice), 0)
	for y, row := range s.Lattice {
		pushInts(l, row)
		l.RawSetInt(-2, y+1)
	}
	l.SetField(-2, "lattice")

	l.CreateTable(len(s.DefectColors), 0)
	for i, c := range s.DefectColors {
		l.PushString(c)
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "colors")

	l.CreateTable(len(s.Graph.Nodes), 0)
	for i, n := range s.Graph.Nodes {
		l.CreateTable(0, 6)
		l.PushInteger(i)
		l.SetField(-2, "index")
		l.PushInteger(n.Time)
		l.SetField(-2, "time")
		l.PushInteger(n.Element)
		l.SetField(-2, "element")
		l.PushBoolean(n.IsBoundary)
		l.SetField(-2, "is_boundary")
		l.PushBoolean(n.Highlighted)
		l.SetField(-2, "highlighted")
		l.PushInteger(n.Value)
		l.SetField(-2, "value")
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "nodes")

	l.CreateTable(len(s.Graph.Edges), 0)
	for i, e := range s.Graph.Edges {
		pushInts(l, []int{e.A, e.B})
		l.RawSetInt(-2, i+1)
	}
	l.SetField(-2, "edges")
}

// pushInts pushes values as a 1-based Lua array
func pushInts(l *lua.State, values []int) {
	l.CreateTable(len(values), 0)
	for i, v := range values {
		l.PushInteger(v)
		l.RawSetInt(-2, i+1)
	}
}

func readParity(l *lua.State, index int) (*[2]int, error) {
	if l.IsNoneOrNil(index) {
		return nil, nil
	}
	if !l.IsTable(index) {
		return nil, errors.New("lua evaluate: parity must be a table or nil")
	}

	var parity [2]int
	l.PushNil()
	for l.Next(index) {
		key, okKey := l.ToInteger(-2)
		value, okValue := l.ToInteger(-1)
		l.Pop(1)
		if !okKey || !okValue || key < 1 || key > 2 {
			return nil, errors.New("lua evaluate: parity must be {left, right} integers")
		}
		parity[key-1] = value
	}
	return &parity, nil
}

func readClusters(l *lua.State, index int) (map[int]int, error) {
	if l.IsNoneOrNil(index) {
		return nil, nil
	}
	if !l.IsTable(index) {
		return nil, errors.New("lua evaluate: clusters must be a table or nil")
	}

	clusters := make(map[int]int)
	l.PushNil()
	for l.Next(index) {
		node, okNode := l.ToInteger(-2)
		id, okID := l.ToInteger(-1)
		l.Pop(1)
		if !okNode || !okID {
			return nil, errors.New("lua evaluate: clusters must map node index to cluster id")
		}
		clusters[node] = id
	}
	return clusters, nil
}
