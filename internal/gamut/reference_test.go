package gamut

import (
	"errors"
	"testing"
)

func TestParseReference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     any
		want    Reference
		wantErr error
	}{
		{
			name: "stack reference",
			raw:  "block_gamut",
			want: Reference{Kind: StackRef, Raw: "block_gamut", Class: "block_gamut"},
		},
		{
			name: "filter with default method",
			raw:  "filter:Header",
			want: Reference{Kind: FilterRef, Raw: "filter:Header", Alias: "filter", Class: "Header"},
		},
		{
			name: "filter with method",
			raw:  "filter:Note:strip",
			want: Reference{Kind: FilterRef, Raw: "filter:Note:strip", Alias: "filter", Class: "Note", Method: "strip"},
		},
		{
			name: "tool alias",
			raw:  "tool:Outdent",
			want: Reference{Kind: ToolRef, Raw: "tool:Outdent", Alias: "tool", Class: "Outdent"},
		},
		{
			name: "plural tools alias with method",
			raw:  "tools:HTML:unhash",
			want: Reference{Kind: ToolRef, Raw: "tools:HTML:unhash", Alias: "tools", Class: "HTML", Method: "unhash"},
		},
		{
			name: "direct class with method",
			raw:  "mdext/tool.Outdent:run",
			want: Reference{Kind: DirectRef, Raw: "mdext/tool.Outdent:run", Class: "mdext/tool.Outdent", Method: "run"},
		},
		{
			name: "direct class without method",
			raw:  "mdext/filter.Header",
			want: Reference{Kind: DirectRef, Raw: "mdext/filter.Header", Class: "mdext/filter.Header"},
		},
		{name: "integer", raw: 42, wantErr: ErrInvalidStageName},
		{name: "nil", raw: nil, wantErr: ErrInvalidStageName},
		{name: "empty string", raw: "", wantErr: ErrInvalidStageName},
		{name: "blank string", raw: "   ", wantErr: ErrInvalidStageName},
		{name: "embedded space", raw: "filter: Header", wantErr: ErrInvalidStageName},
		{name: "empty part", raw: "filter::strip", wantErr: ErrInvalidStageName},
		{name: "alias only", raw: "filter:", wantErr: ErrInvalidStageName},
		{name: "too many parts", raw: "filter:Note:strip:more", wantErr: ErrInvalidStageName},
		{name: "direct with three parts", raw: "Some:Class:method", wantErr: ErrInvalidStageName},
		{name: "malformed stack name", raw: "bad-name_gamut", wantErr: ErrInvalidStageName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseReference(tt.raw, DefaultAliases)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseReference(%v) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseReference_CustomAliases(t *testing.T) {
	t.Parallel()

	aliases := Aliases{Filter: []string{"rule"}, Tool: []string{"util"}}

	got, err := ParseReference("rule:Header", aliases)
	if err != nil || got.Kind != FilterRef {
		t.Errorf("rule:Header = %+v, %v, want FilterRef", got, err)
	}

	got, err = ParseReference("filter:Header", aliases)
	if err != nil || got.Kind != DirectRef {
		t.Errorf("filter:Header with custom aliases = %+v, %v, want DirectRef", got, err)
	}
}

func TestReference_Qualified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "filter:Header", want: "f.Header"},
		{raw: "tool:Outdent:run", want: "t.Outdent"},
		{raw: "x/y.Z:m", want: "x/y.Z"},
		{raw: "span_gamut", want: ""},
	}

	for _, tt := range tests {
		ref, err := ParseReference(tt.raw, DefaultAliases)
		if err != nil {
			t.Fatalf("ParseReference(%q): %v", tt.raw, err)
		}
		if got := ref.Qualified("f", "t"); got != tt.want {
			t.Errorf("Qualified(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	if got := ShortName("mdext/filter.Note"); got != "Note" {
		t.Errorf("ShortName = %q, want Note", got)
	}
	if got := Qualify("", "Bare"); got != "Bare" {
		t.Errorf("Qualify with empty namespace = %q, want Bare", got)
	}
}
