package mercadopublico

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // empty means nil expected
	}{
		{"iso with seconds", "2025-08-15T15:00:00", "2025-08-15T15:00:00"},
		{"rfc3339 utc", "2025-08-15T15:00:00Z", "2025-08-15T15:00:00"},
		{"date only", "2025-08-15", "2025-08-15T00:00:00"},
		{"empty", "", ""},
		{"garbage", "15/08/2025", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDate(tt.input)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02T15:04:05"))
		})
	}
}

func TestProductText(t *testing.T) {
	text := ProductText([]Producto{
		{NombreProducto: "Silla ergonómica", Cantidad: 25, UnidadMedida: "Unidad"},
		{NombreProducto: "Escritorio", Cantidad: 5, UnidadMedida: "Unidad", Descripcion: "Escritorio de madera 1.5m"},
		{NombreProducto: "Mesa", Cantidad: 1, UnidadMedida: "Unidad", Descripcion: "mesa"},
	})

	assert.Contains(t, text, "- Silla ergonómica (25 Unidad)")
	assert.Contains(t, text, "Detalle: Escritorio de madera 1.5m")
	assert.NotContains(t, text, "Detalle: mesa", "description equal to the name adds nothing")
}

func TestProductTextDefaults(t *testing.T) {
	text := ProductText([]Producto{{Cantidad: 2}})
	assert.Equal(t, "- Producto genérico (2 un)", text)
}

func TestProductTextEmpty(t *testing.T) {
	assert.Equal(t, "", ProductText(nil))
}

func TestToRecordListingOmitsDetailFields(t *testing.T) {
	code := 5
	entry := ListingEntry{
		CodigoExterno: "a-1",
		Nombre:        "Algo",
		CodigoEstado:  &code,
		Estado:        "Publicada",
		FechaCierre:   "2025-08-15T15:00:00",
		Descripcion:   "no confiable en el listado",
		Comprador:     Comprador{CodigoOrganismo: "ORG-1"},
	}

	rec := ToRecord(entry, false)
	assert.False(t, rec.HasDetail)
	assert.Empty(t, rec.Description)
	assert.Empty(t, rec.OrgCode)
	require.NotNil(t, rec.ClosesAt)
	assert.Equal(t, 15, rec.ClosesAt.Day())
}

func TestToRecordDetail(t *testing.T) {
	entry := ListingEntry{
		CodigoExterno: "a-1",
		Nombre:        "Algo",
		Descripcion:   "descripción completa",
		Comprador:     Comprador{CodigoOrganismo: "ORG-1", NombreOrganismo: "Servicio de Salud"},
		Items: ItemsEnvelope{Listado: []Producto{
			{NombreProducto: "Guantes", Cantidad: 100, UnidadMedida: "Caja"},
		}},
		Fechas: Fechas{
			FechaPublicacion:          "2025-08-01T09:00:00",
			FechaCierre:               "2025-08-20T15:00:00",
			FechaEstimadaAdjudicacion: "2025-09-01T12:00:00",
		},
	}

	rec := ToRecord(entry, true)
	assert.True(t, rec.HasDetail)
	assert.Equal(t, "ORG-1", rec.OrgCode)
	assert.Equal(t, "descripción completa", rec.Description)
	assert.Contains(t, rec.ProductText, "Guantes")

	// No top-level FechaCierre; the nested one applies.
	require.NotNil(t, rec.ClosesAt)
	assert.Equal(t, 20, rec.ClosesAt.Day())

	// No final award date yet; the estimate is used.
	require.NotNil(t, rec.AwardedAt)
	assert.Equal(t, time.September, rec.AwardedAt.Month())
}

func TestToRecordPrefersTopLevelClosingDate(t *testing.T) {
	entry := ListingEntry{
		CodigoExterno: "a-1",
		FechaCierre:   "2025-08-10T15:00:00",
		Fechas:        Fechas{FechaCierre: "2025-08-20T15:00:00"},
	}

	rec := ToRecord(entry, false)
	require.NotNil(t, rec.ClosesAt)
	assert.Equal(t, 10, rec.ClosesAt.Day())
}

func TestItemsEnvelopeShapes(t *testing.T) {
	var fromObject ItemsEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{"Listado": [{"NombreProducto": "Silla"}]}`), &fromObject))
	require.Len(t, fromObject.Listado, 1)
	assert.Equal(t, "Silla", fromObject.Listado[0].NombreProducto)

	var fromArray ItemsEnvelope
	require.NoError(t, json.Unmarshal([]byte(`[{"NombreProducto": "Mesa"}]`), &fromArray))
	require.Len(t, fromArray.Listado, 1)
	assert.Equal(t, "Mesa", fromArray.Listado[0].NombreProducto)

	var fromNull ItemsEnvelope
	require.NoError(t, json.Unmarshal([]byte(`null`), &fromNull))
	assert.Nil(t, fromNull.Listado)
}
