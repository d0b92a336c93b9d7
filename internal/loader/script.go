package loader

import (
	"bytes"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"mu-asset-cache/internal/asset"
)

// Script is a compiled Lua chunk. It reloads in place so a VM holding the
// Script runs the new code on its next Run.
type Script struct {
	Name       string
	Proto      *lua.FunctionProto
	Generation int
}

func (*Script) Kind() asset.Kind { return asset.KindScript }
func (s *Script) Release()       { s.Proto = nil }

// Run executes the chunk in L and leaves its return values on the stack.
func (s *Script) Run(L *lua.LState) error {
	if s.Proto == nil {
		return fmt.Errorf("loader: script %s released", s.Name)
	}
	L.Push(L.NewFunctionFromProto(s.Proto))
	return L.PCall(0, lua.MultRet, nil)
}

// Reload recompiles the source. A syntax error keeps the previous chunk.
func (s *Script) Reload(ctx asset.LoadContext) error {
	proto, err := compileScript(ctx)
	if err != nil {
		return err
	}
	s.Proto = proto
	s.Generation++
	ctx.Log.Debug("script recompiled", zap.String("identifier", ctx.Identifier), zap.Int("generation", s.Generation))
	return nil
}

// LoadScript parses and compiles a Lua file.
func LoadScript(ctx asset.LoadContext) (asset.Asset, error) {
	proto, err := compileScript(ctx)
	if err != nil {
		return nil, err
	}
	return &Script{Name: ctx.Identifier, Proto: proto}, nil
}

func compileScript(ctx asset.LoadContext) (*lua.FunctionProto, error) {
	raw, err := ctx.ReadFile()
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", ctx.Path, err)
	}
	chunk, err := parse.Parse(bytes.NewReader(raw), ctx.Identifier)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", ctx.Path, err)
	}
	proto, err := lua.Compile(chunk, ctx.Identifier)
	if err != nil {
		return nil, fmt.Errorf("loader: compile %s: %w", ctx.Path, err)
	}
	return proto, nil
}
