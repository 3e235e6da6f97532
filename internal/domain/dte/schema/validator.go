// Package schema valida documentos DTE contra el esquema JSON oficial del tipo y versión
// correspondiente, más las reglas aritméticas entre campos que el esquema no expresa.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/pkg/mh"
)

// TipoAnulacion clave del esquema del evento de invalidación.
const TipoAnulacion = "anulacion"

// FieldError violación puntual: ruta del campo y mensaje.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Result resultado de una validación. Errors recoge todas las violaciones encontradas.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors"`
}

type clave struct {
	tipo    string
	version int
}

// Validator esquemas compilados por (tipoDte, versión). Es inmutable tras construirse
// y seguro para uso concurrente.
type Validator struct {
	esquemas map[clave]*jsonschema.Schema
	vigente  map[string]int // versión exigida por tipo
}

// NewValidator compila los esquemas de todos los tipos soportados y del evento de invalidación.
func NewValidator() (*Validator, error) {
	v := &Validator{
		esquemas: make(map[clave]*jsonschema.Schema),
		vigente:  make(map[string]int),
	}
	for _, tipo := range mh.TiposSoportados() {
		s, err := compilar(string(tipo), esquemaDTE(tipo))
		if err != nil {
			return nil, err
		}
		v.esquemas[clave{string(tipo), tipo.Version()}] = s
		v.vigente[string(tipo)] = tipo.Version()
	}
	s, err := compilar(TipoAnulacion, esquemaAnulacion())
	if err != nil {
		return nil, err
	}
	v.esquemas[clave{TipoAnulacion, mh.VersionAnulacion}] = s
	v.vigente[TipoAnulacion] = mh.VersionAnulacion
	return v, nil
}

// MustNewValidator igual que NewValidator pero entra en pánico si un esquema no compila.
func MustNewValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func compilar(nombre string, esquema map[string]any) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(esquema)
	if err != nil {
		return nil, fmt.Errorf("schema: serializar %s: %w", nombre, err)
	}
	url := fmt.Sprintf("dte-%s.json", nombre)
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	c.AssertFormat = true
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema: registrar %s: %w", nombre, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema: compilar %s: %w", nombre, err)
	}
	return s, nil
}

// Versiones devuelve la versión de esquema vigente por tipo (incluye "anulacion").
func (v *Validator) Versiones() map[string]int {
	out := make(map[string]int, len(v.vigente))
	for k, ver := range v.vigente {
		out[k] = ver
	}
	return out
}

// Validate valida doc contra el esquema del tipo indicado. doc puede ser un *dte.Documento,
// un *dte.Anulacion, JSON en []byte/json.RawMessage o un valor ya decodificado.
// Solo devuelve error si el tipo no está soportado o doc no es JSON; las violaciones
// del documento van en Result.
func (v *Validator) Validate(doc any, tipoDte string) (*Result, error) {
	if _, ok := v.vigente[tipoDte]; !ok {
		return nil, fmt.Errorf("%w: %q", dte.ErrTipoDteNoSoportado, tipoDte)
	}
	raw, err := aJSON(doc)
	if err != nil {
		return nil, err
	}
	instancia, err := decodificar(raw)
	if err != nil {
		return nil, err
	}

	s := v.esquema(tipoDte, instancia)
	res := &Result{Valid: true, Errors: []FieldError{}}
	if err := s.Validate(instancia); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return nil, fmt.Errorf("schema: validar: %w", err)
		}
		res.Errors = append(res.Errors, hojas(ve)...)
	}
	if tipoDte != TipoAnulacion {
		res.Errors = append(res.Errors, verificarTotales(mh.TipoDte(tipoDte), raw)...)
	}
	res.Errors = deduplicar(res.Errors)
	res.Valid = len(res.Errors) == 0
	return res, nil
}

// ValidateAnulacion atajo para el evento de invalidación.
func (v *Validator) ValidateAnulacion(doc any) (*Result, error) {
	return v.Validate(doc, TipoAnulacion)
}

// esquema elige el esquema por la versión declarada en el documento; si no hay uno
// para esa versión se usa el vigente, que reporta la versión como inválida.
func (v *Validator) esquema(tipo string, instancia any) *jsonschema.Schema {
	if ver, ok := versionDeclarada(instancia); ok {
		if s, ok := v.esquemas[clave{tipo, ver}]; ok {
			return s
		}
	}
	return v.esquemas[clave{tipo, v.vigente[tipo]}]
}

func versionDeclarada(instancia any) (int, bool) {
	obj, ok := instancia.(map[string]any)
	if !ok {
		return 0, false
	}
	ident, ok := obj["identificacion"].(map[string]any)
	if !ok {
		return 0, false
	}
	n, ok := ident["version"].(json.Number)
	if !ok {
		return 0, false
	}
	ver, err := strconv.Atoi(n.String())
	return ver, err == nil
}

func aJSON(doc any) ([]byte, error) {
	switch d := doc.(type) {
	case nil:
		return nil, errors.New("schema: documento vacío")
	case []byte:
		return d, nil
	case json.RawMessage:
		return d, nil
	case string:
		return []byte(d), nil
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: serializar documento: %w", err)
	}
	return raw, nil
}

// decodificar usa json.Number para que multipleOf se evalúe sobre el decimal exacto.
func decodificar(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("schema: JSON inválido: %w", err)
	}
	return out, nil
}

// hojas aplana el árbol de causas quedándose con las violaciones concretas.
func hojas(ve *jsonschema.ValidationError) []FieldError {
	if len(ve.Causes) == 0 {
		return []FieldError{{Path: ruta(ve.InstanceLocation), Message: ve.Message}}
	}
	var out []FieldError
	for _, c := range ve.Causes {
		out = append(out, hojas(c)...)
	}
	return out
}

// ruta convierte un JSON pointer (/cuerpoDocumento/0/precioUni) a cuerpoDocumento[0].precioUni.
func ruta(pointer string) string {
	if pointer == "" || pointer == "/" {
		return "$"
	}
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(seg); err == nil {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func deduplicar(errs []FieldError) []FieldError {
	vistos := make(map[FieldError]struct{}, len(errs))
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		if _, ok := vistos[e]; ok {
			continue
		}
		vistos[e] = struct{}{}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
