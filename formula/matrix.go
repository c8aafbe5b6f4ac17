package formula

import (
	"sort"
	"strconv"
	"strings"
)

// Matrix holds the settings and option axes a package is built for.
type Matrix struct {
	Require map[string][]string
	Options map[string][]string
}

// MatrixOf returns the single-point matrix of one build.
func MatrixOf(s Settings, opts Options) Matrix {
	m := Matrix{
		Require: map[string][]string{
			"os":               {s.OS},
			"arch":             {s.Arch},
			"build_type":       {s.BuildType},
			"compiler":         {s.Compiler.Name},
			"compiler.version": {s.Compiler.Version},
		},
	}
	if s.Compiler.Libcxx != "" {
		m.Require["compiler.libcxx"] = []string{s.Compiler.Libcxx}
	}
	if len(opts) > 0 {
		m.Options = make(map[string][]string, len(opts))
		for name, v := range opts {
			m.Options[name] = []string{name + "=" + strconv.FormatBool(v)}
		}
	}
	return m
}

// Combinations returns all cartesian product combinations of the matrix.
// Keys are sorted alphabetically, and combinations are built layer by layer.
// Require fields are joined with "-", then combined with options using "|".
func (m *Matrix) Combinations() []string {
	cartesian := func(kvs map[string][]string) []string {
		if len(kvs) == 0 {
			return nil
		}
		keys := make([]string, 0, len(kvs))
		for k := range kvs {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		result := make([]string, len(kvs[keys[0]]))
		copy(result, kvs[keys[0]])
		for _, k := range keys[1:] {
			next := make([]string, 0, len(result)*len(kvs[k]))
			for _, prev := range result {
				for _, v := range kvs[k] {
					next = append(next, prev+"-"+v)
				}
			}
			result = next
		}
		return result
	}

	requireCombos := cartesian(m.Require)
	optionsCombos := cartesian(m.Options)
	if len(requireCombos) == 0 {
		return optionsCombos
	}
	if len(optionsCombos) == 0 {
		return requireCombos
	}
	result := make([]string, 0, len(requireCombos)*len(optionsCombos))
	for _, req := range requireCombos {
		for _, opt := range optionsCombos {
			result = append(result, req+"|"+opt)
		}
	}
	return result
}

// String returns the first combination with spaces replaced, suitable as
// a directory name. It is the package id of a single-point matrix.
func (m *Matrix) String() string {
	combos := m.Combinations()
	if len(combos) == 0 {
		return ""
	}
	return strings.ReplaceAll(combos[0], " ", "_")
}
