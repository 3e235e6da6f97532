package dte_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	appdte "github.com/jhoicas/dte-api/internal/application/dte"
	"github.com/jhoicas/dte-api/internal/domain"
	dtedoc "github.com/jhoicas/dte-api/internal/domain/dte"
	"github.com/jhoicas/dte-api/internal/domain/entity"
	"github.com/jhoicas/dte-api/internal/domain/hacienda"
	"github.com/jhoicas/dte-api/internal/domain/repository"
	"github.com/jhoicas/dte-api/pkg/mh"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type repoMemoria struct {
	mu    sync.Mutex
	datos map[string]entity.Transmision
}

func nuevoRepo() *repoMemoria { return &repoMemoria{datos: map[string]entity.Transmision{}} }

var _ repository.TransmisionRepository = (*repoMemoria)(nil)

func (r *repoMemoria) Create(_ context.Context, t *entity.Transmision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.datos {
		if o.TenantID == t.TenantID && o.NumeroControl == t.NumeroControl {
			return domain.ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = dtedoc.NuevoCodigoGeneracion()
	}
	t.CreatedAt, t.UpdatedAt = time.Now(), time.Now()
	r.datos[t.ID] = clonar(t)
	return nil
}

func (r *repoMemoria) GetByID(_ context.Context, tenantID, id string) (*entity.Transmision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.datos[id]
	if !ok || t.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	c := clonar(&t)
	return &c, nil
}

func (r *repoMemoria) GetByCodigoGeneracion(_ context.Context, tenantID, codigo string) (*entity.Transmision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.datos {
		if t.TenantID == tenantID && t.CodigoGeneracion == codigo {
			c := clonar(&t)
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *repoMemoria) Update(_ context.Context, t *entity.Transmision) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.datos[t.ID]; !ok {
		return domain.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	r.datos[t.ID] = clonar(t)
	return nil
}

func (r *repoMemoria) ListByTenant(_ context.Context, tenantID string, estado entity.EstadoTransmision, _ int) ([]*entity.Transmision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Transmision
	for _, t := range r.datos {
		if t.TenantID == tenantID && (estado == "" || t.Estado == estado) {
			c := clonar(&t)
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *repoMemoria) cantidad() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.datos)
}

func clonar(t *entity.Transmision) entity.Transmision {
	c := *t
	c.Observaciones = append([]string(nil), t.Observaciones...)
	c.Documento = append([]byte(nil), t.Documento...)
	return c
}

type correlativosMemoria struct {
	mu     sync.Mutex
	ultimo map[string]int64
}

func (c *correlativosMemoria) Siguiente(_ context.Context, tenantID, tipoDte, ambiente, codEstable string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := tenantID + "|" + tipoDte + "|" + ambiente + "|" + codEstable
	c.ultimo[k]++
	return c.ultimo[k], nil
}

func (c *correlativosMemoria) valor(tenantID, tipoDte, ambiente, codEstable string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ultimo[tenantID+"|"+tipoDte+"|"+ambiente+"|"+codEstable]
}

// txMemoria revierte los correlativos y los registros creados si fn falla.
type txMemoria struct {
	mu   sync.Mutex
	corr *correlativosMemoria
	repo *repoMemoria
}

func (tx *txMemoria) RunEmision(ctx context.Context, fn func(repository.CorrelativoRepository, repository.TransmisionRepository) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.corr.mu.Lock()
	antesCorr := make(map[string]int64, len(tx.corr.ultimo))
	for k, v := range tx.corr.ultimo {
		antesCorr[k] = v
	}
	tx.corr.mu.Unlock()
	tx.repo.mu.Lock()
	antesRepo := make(map[string]entity.Transmision, len(tx.repo.datos))
	for k, v := range tx.repo.datos {
		antesRepo[k] = v
	}
	tx.repo.mu.Unlock()

	if err := fn(tx.corr, tx.repo); err != nil {
		tx.corr.mu.Lock()
		tx.corr.ultimo = antesCorr
		tx.corr.mu.Unlock()
		tx.repo.mu.Lock()
		tx.repo.datos = antesRepo
		tx.repo.mu.Unlock()
		return err
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Firma y MH
// ──────────────────────────────────────────────────────────────────────────────

type firmanteStub struct {
	err error
}

func (f firmanteStub) SignDTE(any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "eyJhbGciOiJSUzI1NiJ9.eyJ9.firma", nil
}

func firmantesCon(f appdte.Firmante, err error) appdte.Firmantes {
	return appdte.FirmantesFunc(func(context.Context, string) (appdte.Firmante, error) {
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

// autoridadStub responde con las respuestas en orden (la última se repite). Si bloquear no es
// nil, Transmitir avisa en llego y espera a que se cierre bloquear.
type autoridadStub struct {
	mu          sync.Mutex
	respuestas  []hacienda.Respuesta
	consulta    hacienda.Respuesta
	anulacion   hacienda.Respuesta
	envios      []hacienda.Envio
	anulaciones []hacienda.EnvioAnulacion
	llamadas    atomic.Int32
	llego       chan struct{}
	bloquear    chan struct{}
}

func (a *autoridadStub) Transmitir(_ context.Context, _ hacienda.Credenciales, envio hacienda.Envio) hacienda.Respuesta {
	a.llamadas.Add(1)
	if a.bloquear != nil {
		a.llego <- struct{}{}
		<-a.bloquear
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.envios = append(a.envios, envio)
	r := a.respuestas[0]
	if len(a.respuestas) > 1 {
		a.respuestas = a.respuestas[1:]
	}
	return r
}

func (a *autoridadStub) Consultar(context.Context, hacienda.Credenciales, hacienda.Consulta) hacienda.Respuesta {
	return a.consulta
}

func (a *autoridadStub) Anular(_ context.Context, _ hacienda.Credenciales, envio hacienda.EnvioAnulacion) hacienda.Respuesta {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.anulaciones = append(a.anulaciones, envio)
	return a.anulacion
}

func aceptado(sello string) hacienda.Aceptado {
	return hacienda.Aceptado{
		Estado:          "PROCESADO",
		SelloRecibido:   sello,
		FhProcesamiento: time.Date(2024, 6, 1, 10, 30, 5, 0, dtedoc.ZonaElSalvador),
		CodigoMsg:       "001",
		DescripcionMsg:  "RECIBIDO",
		Observaciones:   []string{},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas
// ──────────────────────────────────────────────────────────────────────────────

const (
	tenant = "tenant-1"
	sello1 = "2024A1B2C3D4E5F6A7B8C9D0E1F2A3B4C5D6E7F8"
)

var (
	fechaFija = time.Date(2024, 6, 1, 16, 30, 0, 0, time.UTC)
	cred      = hacienda.Credenciales{Nit: "06142803901121", Password: "secreto"}
)

func emisor() dtedoc.Emisor {
	estable, pv := "M001", "P001"
	return dtedoc.Emisor{
		Nit:                 "06142803901121",
		Nrc:                 "1234567",
		Nombre:              "COMERCIAL EL SOL, S.A. DE C.V.",
		CodActividad:        "46900",
		DescActividad:       "Venta al por mayor de otros productos",
		TipoEstablecimiento: "01",
		Direccion:           dtedoc.Direccion{Departamento: "06", Municipio: "14", Complemento: "Col. Escalón"},
		Telefono:            "22223333",
		Correo:              "facturacion@elsol.com.sv",
		CodEstableMH:        &estable,
		CodPuntoVentaMH:     &pv,
	}
}

func entradaCCF() dtedoc.BuildInput {
	return dtedoc.BuildInput{
		TipoDte: mh.TipoCCF,
		Emisor:  emisor(),
		Receptor: &dtedoc.ReceptorInput{
			Nit:           "06140101001012",
			Nrc:           "765432",
			Nombre:        "DISTRIBUIDORA LA LUNA, S.A. DE C.V.",
			CodActividad:  "47190",
			DescActividad: "Venta al por menor",
			Direccion:     &dtedoc.Direccion{Departamento: "05", Municipio: "01", Complemento: "Santa Tecla"},
			Telefono:      "25556666",
			Correo:        "compras@laluna.com.sv",
		},
		Items: []dtedoc.ItemInput{
			{Descripcion: "Servicio gravado", Cantidad: decimal.NewFromInt(2), PrecioUni: decimal.RequireFromString("10.00")},
		},
		CondicionOperacion: mh.CondicionContado,
	}
}

func motivoRescindir() dtedoc.Motivo {
	return dtedoc.Motivo{
		TipoAnulacion:     mh.AnulacionRescindir,
		NombreResponsable: "Ana Pérez",
		TipDocResponsable: mh.DocIdentificacionDUI,
		NumDocResponsable: "12345678-4",
		NombreSolicita:    "Luis Gómez",
		TipDocSolicita:    mh.DocIdentificacionDUI,
		NumDocSolicita:    "00000000-0",
	}
}
