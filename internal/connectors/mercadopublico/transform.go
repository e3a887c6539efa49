package mercadopublico

import (
	"fmt"
	"strings"
	"time"

	"github.com/atacama-labs/tenderwatch/internal/core/domain"
	"github.com/atacama-labs/tenderwatch/internal/logger"
)

// dateLayouts are the ISO-8601 variants the upstream has been observed to
// emit. RFC3339 covers the trailing-Z and offset forms.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate converts an upstream date string to a time, or nil when the
// value is absent or malformed. Malformed input is logged, never fatal.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	logger.Warnf("unrecognised date format %q", s)
	return nil
}

// ProductText renders the item list as structured text: one line per
// product, with an indented detail line when the description adds
// information beyond the name.
func ProductText(items []Producto) string {
	var b strings.Builder
	for _, p := range items {
		name := p.NombreProducto
		if name == "" {
			name = "Producto genérico"
		}
		unit := p.UnidadMedida
		if unit == "" {
			unit = "un"
		}

		fmt.Fprintf(&b, "- %s (%v %s)\n", name, p.Cantidad, unit)
		if p.Descripcion != "" && !strings.EqualFold(p.Descripcion, name) {
			fmt.Fprintf(&b, "  Detalle: %s\n", p.Descripcion)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ToRecord normalises a wire entry into the upsert input the pipeline
// works with. hasDetail marks whether the entry came from a detail fetch;
// listing entries never populate the detail fields.
func ToRecord(e ListingEntry, hasDetail bool) domain.TenderRecord {
	rec := domain.TenderRecord{
		Code:        e.CodigoExterno,
		Name:        e.Nombre,
		StateCode:   e.CodigoEstado,
		StateName:   e.Estado,
		PublishedAt: ParseDate(e.Fechas.FechaPublicacion),
		StartsAt:    ParseDate(e.Fechas.FechaInicio),
		ClosesAt:    closingDate(e),
		AwardedAt:   awardDate(e.Fechas),
		Stage:       domain.StageIgnored,
	}

	if hasDetail {
		rec.OrgCode = e.Comprador.CodigoOrganismo
		rec.OrgName = e.Comprador.NombreOrganismo
		rec.Description = e.Descripcion
		rec.ProductText = ProductText(e.Items.Listado)
		rec.HasDetail = true
	}

	return rec
}

// closingDate prefers the top-level FechaCierre over the nested one.
func closingDate(e ListingEntry) *time.Time {
	if t := ParseDate(e.FechaCierre); t != nil {
		return t
	}
	return ParseDate(e.Fechas.FechaCierre)
}

// awardDate falls back to the estimated award date when no final one is
// published yet.
func awardDate(f Fechas) *time.Time {
	if t := ParseDate(f.FechaAdjudicacion); t != nil {
		return t
	}
	return ParseDate(f.FechaEstimadaAdjudicacion)
}
