package formula

import (
	"testing"
)

func TestMatrix_Combinations(t *testing.T) {
	tests := []struct {
		name   string
		matrix Matrix
		want   []string
	}{
		{
			name: "require only",
			matrix: Matrix{
				Require: map[string][]string{
					"os":   {"Linux", "Macos"},
					"arch": {"x86_64", "armv8"},
				},
			},
			// sorted keys: arch, os
			want: []string{
				"x86_64-Linux",
				"x86_64-Macos",
				"armv8-Linux",
				"armv8-Macos",
			},
		},
		{
			name: "require with options",
			matrix: Matrix{
				Require: map[string][]string{
					"os":   {"Linux"},
					"arch": {"x86_64"},
				},
				Options: map[string][]string{
					"shared": {"shared=false", "shared=true"},
				},
			},
			want: []string{
				"x86_64-Linux|shared=false",
				"x86_64-Linux|shared=true",
			},
		},
		{
			name: "only options",
			matrix: Matrix{
				Options: map[string][]string{
					"shared": {"shared=false"},
					"fPIC":   {"fPIC=true"},
				},
			},
			want: []string{"fPIC=true-shared=false"},
		},
		{
			name:   "empty matrix",
			matrix: Matrix{},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.matrix.Combinations()
			if len(got) != len(tt.want) {
				t.Errorf("Matrix.Combinations() length = %d, want %d", len(got), len(tt.want))
				t.Errorf("got: %v", got)
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("Matrix.Combinations()[%d] = %q, want %q", i, v, tt.want[i])
				}
			}
		})
	}
}

func TestMatrixOf(t *testing.T) {
	s := Settings{
		OS:        Linux,
		Arch:      "x86_64",
		BuildType: "Release",
		Compiler:  Compiler{Name: GCC, Version: "7", Libcxx: "libstdc++11"},
	}
	m := MatrixOf(s, Options{"shared": false, "fPIC": true})
	want := "x86_64-Release-gcc-libstdc++11-7-Linux|fPIC=true-shared=false"
	if got := m.String(); got != want {
		t.Errorf("MatrixOf().String() = %q, want %q", got, want)
	}

	win := Settings{
		OS:        Windows,
		Arch:      "x86_64",
		BuildType: "Debug",
		Compiler:  Compiler{Name: MSVC, Version: "16"},
	}
	m = MatrixOf(win, Options{})
	if got, want := m.String(), "x86_64-Debug-Visual_Studio-16-Windows"; got != want {
		t.Errorf("MatrixOf().String() = %q, want %q", got, want)
	}
}

func TestMatrixString_Empty(t *testing.T) {
	m := Matrix{}
	if got := m.String(); got != "" {
		t.Errorf("Matrix{}.String() = %q, want empty", got)
	}
}
