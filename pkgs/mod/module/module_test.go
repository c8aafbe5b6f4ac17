package module

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestEscapePath(t *testing.T) {
	tests := []struct {
		name        string
		modId       string
		wantEscaped string
		wantErr     bool
	}{
		{
			name:        "simple path",
			modId:       "owner/repo",
			wantEscaped: filepath.Join("owner", "repo"),
			wantErr:     false,
		},
		{
			name:        "empty string",
			modId:       "",
			wantEscaped: "",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			escaped, err := EscapePath(tt.modId)
			if (err != nil) != tt.wantErr {
				t.Errorf("EscapePath() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if escaped != tt.wantEscaped {
				t.Errorf("EscapePath() = %v, want %v", escaped, tt.wantEscaped)
			}
		})
	}
}

func TestEscapePath_Invalid(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("absolute path test only applies to windows")
	}

	_, err := EscapePath("C:\\absolute\\path")
	if err == nil {
		t.Error("EscapePath() expected error for absolute path on windows")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		ref     string
		want    Version
		wantErr bool
	}{
		{ref: "boost/1.71.0", want: Version{Path: "boost", Version: "1.71.0"}},
		{ref: "bzip2/1.0.8@conan/stable", want: Version{Path: "bzip2", Version: "1.0.8", Channel: "conan/stable"}},
		{ref: " zlib/1.2.11 ", want: Version{Path: "zlib", Version: "1.2.11"}},
		{ref: "boost", wantErr: true},
		{ref: "/1.0", wantErr: true},
		{ref: "boost/", wantErr: true},
		{ref: "a/b/c", wantErr: true},
		{ref: "lzma/5.2.4@bincrafters", wantErr: true},
		{ref: "lzma/5.2.4@/stable", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := Parse(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	for _, ref := range []string{"boost/1.71.0", "libunwind/1.3.1@bincrafters/stable"} {
		if got := MustParse(ref).String(); got != ref {
			t.Errorf("String() = %q, want %q", got, ref)
		}
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse did not panic on malformed input")
		}
	}()
	MustParse("nope")
}
