// seed_catalogos genera el script SQL que puebla los catálogos CAT-012 (departamentos) y
// CAT-013 (municipios) a partir del CSV que publica el Ministerio de Hacienda.
//
// Uso: go run ./cmd/seed_catalogos [ruta/CAT-013.csv]
// Por defecto busca CAT-013.csv en el directorio actual. El archivo viene en ISO-8859-1,
// separado por ';', con columnas: departamento;municipio;nombre.
// Escribe: internal/infrastructure/postgres/migrations/000004_seed_catalogos.{up,down}.sql
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/dte-api/pkg/mh"
)

type municipio struct {
	departamento string
	codigo       string
	nombre       string
}

func main() {
	csvPath := "CAT-013.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	municipios, err := leerMunicipios(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	dir := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations")
	outPath := filepath.Join(dir, "000004_seed_catalogos.up.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := escribirSQL(out, municipios); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	down := "DELETE FROM cat_municipios;\nDELETE FROM cat_departamentos;\n"
	if err := os.WriteFile(filepath.Join(dir, "000004_seed_catalogos.down.sql"), []byte(down), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir down: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d departamentos, %d municipios\n", outPath, len(mh.Departamentos), len(municipios))
}

// leerMunicipios lee filas departamento;municipio;nombre. Se salta el encabezado y las filas
// cuyo departamento no existe en CAT-012.
func leerMunicipios(r io.Reader) ([]municipio, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	vistos := make(map[string]bool)
	var out []municipio
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 3 {
			continue
		}
		m := municipio{
			departamento: pad2(rec[0]),
			codigo:       pad2(rec[1]),
			nombre:       strings.TrimSpace(rec[2]),
		}
		if _, ok := mh.Departamentos[m.departamento]; !ok || m.nombre == "" {
			continue
		}
		clave := m.departamento + m.codigo
		if vistos[clave] {
			continue
		}
		vistos[clave] = true
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].departamento != out[j].departamento {
			return out[i].departamento < out[j].departamento
		}
		return out[i].codigo < out[j].codigo
	})
	return out, nil
}

func escribirSQL(w io.Writer, municipios []municipio) error {
	var b strings.Builder
	b.WriteString("-- CAT-012 Departamentos y CAT-013 Municipios (El Salvador)\n")
	b.WriteString("-- Generado por cmd/seed_catalogos\n\n")

	var codigos []string
	for c := range mh.Departamentos {
		codigos = append(codigos, c)
	}
	sort.Strings(codigos)

	b.WriteString("-- 1. Departamentos\n")
	b.WriteString("INSERT INTO cat_departamentos (codigo, nombre) VALUES\n")
	for i, c := range codigos {
		sep := ","
		if i == len(codigos)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s')%s\n", c, escapeSQL(mh.Departamentos[c]), sep)
	}
	b.WriteString("ON CONFLICT (codigo) DO UPDATE SET nombre = EXCLUDED.nombre;\n\n")

	if len(municipios) > 0 {
		b.WriteString("-- 2. Municipios\n")
		b.WriteString("INSERT INTO cat_municipios (departamento, codigo, nombre) VALUES\n")
		for i, m := range municipios {
			sep := ","
			if i == len(municipios)-1 {
				sep = ""
			}
			fmt.Fprintf(&b, "  ('%s', '%s', '%s')%s\n", m.departamento, m.codigo, escapeSQL(m.nombre), sep)
		}
		b.WriteString("ON CONFLICT (departamento, codigo) DO UPDATE SET nombre = EXCLUDED.nombre;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func pad2(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
