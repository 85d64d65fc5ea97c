package toolbox

import (
	"context"
	"errors"
)

// Fake is a scriptable in-memory Toolbox used to test pipeline stages
// without real binaries. Zero-value behavior: available, every probe
// returns an empty profile, and every delegated operation fails.
type Fake struct {
	// Unavailable makes Available report false.
	Unavailable bool

	ProbeFunc   func(ctx context.Context, path string) (StreamProfile, error)
	RemuxFunc   func(ctx context.Context, manifestURL, outputPath string) error
	CombineFunc func(ctx context.Context, inputs []string, outputPath string, mode CombineMode) error

	// Calls records every Combine invocation in order.
	Calls []CombineCall
}

// CombineCall captures the arguments of one Combine invocation.
type CombineCall struct {
	Inputs []string
	Output string
	Mode   CombineMode
}

var errFakeUnscripted = errors.New("fake toolbox: operation not scripted")

func (f *Fake) Available() bool {
	return !f.Unavailable
}

func (f *Fake) Probe(ctx context.Context, path string) (StreamProfile, error) {
	if f.ProbeFunc != nil {
		return f.ProbeFunc(ctx, path)
	}
	return StreamProfile{}, nil
}

func (f *Fake) RemuxManifest(ctx context.Context, manifestURL, outputPath string) error {
	if f.RemuxFunc != nil {
		return f.RemuxFunc(ctx, manifestURL, outputPath)
	}
	return errFakeUnscripted
}

func (f *Fake) Combine(ctx context.Context, inputs []string, outputPath string, mode CombineMode) error {
	f.Calls = append(f.Calls, CombineCall{Inputs: append([]string(nil), inputs...), Output: outputPath, Mode: mode})
	if f.CombineFunc != nil {
		return f.CombineFunc(ctx, inputs, outputPath, mode)
	}
	return errFakeUnscripted
}
