package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "CAMPANA", "campana"},
		{"trims whitespace", "  hola  ", "hola"},
		{"strips accents", "Limpió", "limpio"},
		{"strips tilde n keeps base", "Zárate", "zarate"},
		{"mixed", "  PRESUPUESTO de Limpieza Ágil ", "presupuesto de limpieza agil"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDigitCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"(03489) 42-1234", 11},
		{"+54 9 11 5555-5555", 13},
		{"abc", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := DigitCount(tt.input); got != tt.want {
			t.Errorf("DigitCount(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
