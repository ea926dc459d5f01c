package ir

import (
	"encoding/json"
	"fmt"
)

// The JSON schema of §6:
//
//	{ "functions": [ { "name", "args": [{"name","type"}], "type": TYPE_OR_NULL,
//	                   "instrs": [INSTR] } ],
//	  "imports": [...] }
//
// where each INSTR either carries "label" or carries "op" plus the
// appropriate subset of {"dest","type","value","args","funcs","labels"}.

type jsonProgram struct {
	Functions []jsonFunction `json:"functions"`
	Imports   []jsonImport   `json:"imports,omitempty"`
}

type jsonImport struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Alias string `json:"alias,omitempty"`
}

type jsonArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonFunction struct {
	Name   string      `json:"name"`
	Args   []jsonArg   `json:"args"`
	Type   *string     `json:"type"`
	Instrs []jsonInstr `json:"instrs"`
}

type jsonInstr struct {
	Label  *string         `json:"label,omitempty"`
	Op     *string         `json:"op,omitempty"`
	Dest   *string         `json:"dest,omitempty"`
	Type   *string         `json:"type,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
	Args   []string        `json:"args,omitempty"`
	Funcs  []string        `json:"funcs,omitempty"`
	Labels []string        `json:"labels,omitempty"`
}

// MarshalProgramJSON renders a Program as the §6 JSON IR.
func MarshalProgramJSON(p *Program) ([]byte, error) {
	jp := jsonProgram{}
	for _, imp := range p.Imports {
		jp.Imports = append(jp.Imports, jsonImport{Path: imp.Path, Name: imp.Name, Alias: imp.Alias})
	}
	for _, fn := range p.Functions {
		jf := jsonFunction{Name: fn.Signature.Name}
		for _, a := range fn.Signature.Arguments {
			jf.Args = append(jf.Args, jsonArg{Name: a.Name, Type: a.Type.String()})
		}
		if fn.Signature.ReturnType != nil {
			s := fn.Signature.ReturnType.String()
			jf.Type = &s
		}
		for _, item := range fn.Body {
			ji, err := marshalItem(item)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", fn.Signature.Name, err)
			}
			jf.Instrs = append(jf.Instrs, ji)
		}
		jp.Functions = append(jp.Functions, jf)
	}
	return json.MarshalIndent(jp, "", "  ")
}

func marshalItem(item Item) (jsonInstr, error) {
	switch it := item.(type) {
	case LabelMarker:
		name := it.Name
		return jsonInstr{Label: &name}, nil
	case ConstInstr:
		op := string(opConst)
		typ := it.Type.String()
		val, err := marshalLiteral(it.Value)
		if err != nil {
			return jsonInstr{}, err
		}
		return jsonInstr{Op: &op, Dest: &it.Dest, Type: &typ, Value: val}, nil
	case ValueInstr:
		op := string(it.Op)
		typ := it.Type.String()
		return jsonInstr{Op: &op, Dest: &it.Dest, Type: &typ, Args: it.Args, Funcs: it.Funcs, Labels: it.Labels}, nil
	case EffectInstr:
		op := string(it.Op)
		return jsonInstr{Op: &op, Args: it.Args, Funcs: it.Funcs, Labels: it.Labels}, nil
	default:
		return jsonInstr{}, fmt.Errorf("unmarshalable item %T", item)
	}
}

// opConst is the JSON-only pseudo-op naming a Const instruction; it is not
// part of Op's closed set because Const is its own Item shape (§3), but the
// JSON encoding needs some "op" string to discriminate it from Value/Effect.
const opConst Op = "const"

func marshalLiteral(l Literal) (json.RawMessage, error) {
	switch l.Kind {
	case LitInt:
		return json.Marshal(l.I)
	case LitBool:
		return json.Marshal(l.B)
	case LitFloat:
		return json.Marshal(l.F)
	case LitChar:
		return json.Marshal(string(l.C))
	default:
		return nil, fmt.Errorf("literal has no kind")
	}
}

// UnmarshalProgramJSON parses the §6 JSON IR into a Program.
func UnmarshalProgramJSON(data []byte) (*Program, error) {
	var jp jsonProgram
	if err := json.Unmarshal(data, &jp); err != nil {
		return nil, fmt.Errorf("parsing IR JSON: %w", err)
	}
	prog := &Program{}
	for _, imp := range jp.Imports {
		prog.Imports = append(prog.Imports, Import{Path: imp.Path, Name: imp.Name, Alias: imp.Alias})
	}
	for _, jf := range jp.Functions {
		fn := Function{Signature: FunctionSignature{Name: jf.Name}}
		for _, a := range jf.Args {
			t, err := ParseType(a.Type)
			if err != nil {
				return nil, fmt.Errorf("function %s: arg %s: %w", jf.Name, a.Name, err)
			}
			fn.Signature.Arguments = append(fn.Signature.Arguments, Parameter{Name: a.Name, Type: t})
		}
		if jf.Type != nil {
			t, err := ParseType(*jf.Type)
			if err != nil {
				return nil, fmt.Errorf("function %s: return type: %w", jf.Name, err)
			}
			fn.Signature.ReturnType = &t
		}
		for _, ji := range jf.Instrs {
			item, err := unmarshalItem(ji)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", jf.Name, err)
			}
			fn.Body = append(fn.Body, item)
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func unmarshalItem(ji jsonInstr) (Item, error) {
	if ji.Label != nil {
		return LabelMarker{Name: *ji.Label}, nil
	}
	if ji.Op == nil {
		return nil, fmt.Errorf("instruction has neither label nor op")
	}
	op := Op(*ji.Op)

	if op == opConst {
		if ji.Dest == nil || ji.Type == nil {
			return nil, fmt.Errorf("const instruction missing dest/type")
		}
		t, err := ParseType(*ji.Type)
		if err != nil {
			return nil, err
		}
		lit, err := unmarshalLiteral(t, ji.Value)
		if err != nil {
			return nil, err
		}
		return ConstInstr{Dest: *ji.Dest, Type: t, Value: lit}, nil
	}

	if ji.Dest != nil {
		if !ValueOps[op] {
			return nil, fmt.Errorf("op %q has a dest but is not a value op", op)
		}
		t := Int
		if ji.Type != nil {
			parsed, err := ParseType(*ji.Type)
			if err != nil {
				return nil, err
			}
			t = parsed
		}
		return ValueInstr{Dest: *ji.Dest, Type: t, Op: op, Args: ji.Args, Funcs: ji.Funcs, Labels: ji.Labels}, nil
	}

	if !EffectOps[op] {
		return nil, fmt.Errorf("op %q has no dest but is not an effect op", op)
	}
	return EffectInstr{Op: op, Args: ji.Args, Funcs: ji.Funcs, Labels: ji.Labels}, nil
}

func unmarshalLiteral(t Type, raw json.RawMessage) (Literal, error) {
	switch t.Kind {
	case KInt:
		var i int64
		if err := json.Unmarshal(raw, &i); err != nil {
			return Literal{}, fmt.Errorf("parsing int value: %w", err)
		}
		return NewInt(i), nil
	case KBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Literal{}, fmt.Errorf("parsing bool value: %w", err)
		}
		return NewBool(b), nil
	case KFloat:
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return Literal{}, fmt.Errorf("parsing float value: %w", err)
		}
		return NewFloat(f), nil
	case KChar:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Literal{}, fmt.Errorf("parsing char value: %w", err)
		}
		r := []rune(s)
		if len(r) != 1 {
			return Literal{}, fmt.Errorf("char value %q must be exactly one rune", s)
		}
		return NewChar(r[0]), nil
	default:
		return Literal{}, fmt.Errorf("type %s has no literal form", t)
	}
}
