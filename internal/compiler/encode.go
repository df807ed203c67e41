package compiler

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/aabanakhtar-github/vortex-lang/internal/types"
)

// Compiled programs are stored as a CBOR map tagged with a magic string and
// a format version.
const (
	wireMagic   = "VRTX"
	wireVersion = 1
)

// ErrBadFormat is returned by Unmarshal for data that is not a compiled
// Vortex program.
var ErrBadFormat = errors.New("compiler: not a compiled vortex program")

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("compiler: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type wireProgram struct {
	Magic     string      `cbor:"1,keyasint"`
	Version   int         `cbor:"2,keyasint"`
	Filename  string      `cbor:"3,keyasint,omitempty"`
	Code      []byte      `cbor:"4,keyasint"`
	Constants []wireValue `cbor:"5,keyasint"`
	Globals   []string    `cbor:"6,keyasint"`
	Lines     []LineInfo  `cbor:"7,keyasint"`
}

type wireValue struct {
	_    struct{} `cbor:",toarray"`
	Kind types.Kind
	Num  float64
	Str  string
}

// MarshalBinary encodes the program deterministically.
func (p *Program) MarshalBinary() ([]byte, error) {
	w := wireProgram{
		Magic:     wireMagic,
		Version:   wireVersion,
		Filename:  p.Filename,
		Code:      p.Code,
		Constants: make([]wireValue, len(p.Constants)),
		Globals:   p.Globals,
		Lines:     p.Lines,
	}
	for i, v := range p.Constants {
		wv := wireValue{Kind: v.Kind()}
		switch v.Kind() {
		case types.KindBool:
			if v.AsBool() {
				wv.Num = 1
			}
		case types.KindNum:
			wv.Num = v.AsNum()
		case types.KindStr:
			wv.Str = v.AsStr().Chars
		}
		w.Constants[i] = wv
	}
	data, err := cborEncMode.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("compiler: marshal program: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a program written by MarshalBinary. String constants
// are allocated afresh in the returned program.
func Unmarshal(data []byte) (*Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("compiler: unmarshal program: %w", err)
	}
	if w.Magic != wireMagic {
		return nil, ErrBadFormat
	}
	if w.Version != wireVersion {
		return nil, fmt.Errorf("compiler: unsupported program format version %d", w.Version)
	}

	p := NewProgram(w.Filename)
	p.Code = w.Code
	p.Lines = w.Lines
	for _, name := range w.Globals {
		if _, dup := p.GlobalIndex(name); dup {
			return nil, fmt.Errorf("compiler: duplicate global %q in program", name)
		}
		p.DefineGlobal(name)
	}
	p.Constants = make([]types.Value, len(w.Constants))
	for i, wv := range w.Constants {
		switch wv.Kind {
		case types.KindNil:
			p.Constants[i] = types.Nil()
		case types.KindBool:
			p.Constants[i] = types.Bool(wv.Num != 0)
		case types.KindNum:
			p.Constants[i] = types.Num(wv.Num)
		case types.KindStr:
			p.Constants[i] = types.Str(p.NewString(wv.Str))
		default:
			return nil, fmt.Errorf("compiler: constant %d has unknown kind %d", i, wv.Kind)
		}
	}
	return p, nil
}
