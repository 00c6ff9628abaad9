package importer

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Marketing Digital", "marketing-digital"},
		{"Introducción a Go", "introduccion-a-go"},
		{"  Ventas --- Avanzadas!!  ", "ventas-avanzadas"},
		{"Año 2024: Éxito & Más", "ano-2024-exito-mas"},
		{"---", ""},
		{"Curso №1", "curso-1"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.input); got != tc.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestSlugifyIsDeterministic(t *testing.T) {
	title := "Fotografía Básica para Emprendedores"
	first := Slugify(title)
	for i := 0; i < 10; i++ {
		if got := Slugify(title); got != first {
			t.Fatalf("slug changed between calls: %q vs %q", first, got)
		}
	}
	if first != "fotografia-basica-para-emprendedores" {
		t.Fatalf("unexpected slug %q", first)
	}
}
