package domain

import "testing"

func TestAnswerHasCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		snippet *Snippet
		want    bool
	}{
		{"no snippet", nil, false},
		{"empty", &Snippet{}, false},
		{"ascii whitespace", &Snippet{Code: " \t\r\n"}, false},
		{"vertical tab and form feed", &Snippet{Code: "\v\f"}, false},
		{"unicode spaces", &Snippet{Code: "\u00a0\u2003\u3000"}, false},
		{"code", &Snippet{Language: "csharp", Code: "  Debug.Log(1);\n"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := (Answer{Snippet: tt.snippet}).HasCode(); got != tt.want {
				t.Errorf("HasCode() = %v, want %v", got, tt.want)
			}
		})
	}
}
