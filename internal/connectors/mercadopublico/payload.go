package mercadopublico

import "encoding/json"

// listingResponse is the envelope every endpoint answers with: both the
// daily listing and the single-code detail lookup return a Listado array.
type listingResponse struct {
	Cantidad int            `json:"Cantidad"`
	Listado  []ListingEntry `json:"Listado"`
}

// ListingEntry is one tender as it appears on the wire. Daily listing
// entries carry only the shallow fields; detail responses fill in the
// buyer, description and items.
type ListingEntry struct {
	CodigoExterno string        `json:"CodigoExterno"`
	Nombre        string        `json:"Nombre"`
	Descripcion   string        `json:"Descripcion"`
	CodigoEstado  *int          `json:"CodigoEstado"`
	Estado        string        `json:"Estado"`
	FechaCierre   string        `json:"FechaCierre"`
	Fechas        Fechas        `json:"Fechas"`
	Comprador     Comprador     `json:"Comprador"`
	Items         ItemsEnvelope `json:"Items"`
}

// Fechas is the nested date object. All values are ISO-8601 strings and
// any of them may be absent.
type Fechas struct {
	FechaCierre               string `json:"FechaCierre"`
	FechaInicio               string `json:"FechaInicio"`
	FechaPublicacion          string `json:"FechaPublicacion"`
	FechaAdjudicacion         string `json:"FechaAdjudicacion"`
	FechaEstimadaAdjudicacion string `json:"FechaEstimadaAdjudicacion"`
}

// Comprador is the purchasing organization block.
type Comprador struct {
	CodigoOrganismo string `json:"CodigoOrganismo"`
	NombreOrganismo string `json:"NombreOrganismo"`
}

// Producto is one requested item.
type Producto struct {
	NombreProducto string  `json:"NombreProducto"`
	Cantidad       float64 `json:"Cantidad"`
	UnidadMedida   string  `json:"UnidadMedida"`
	Descripcion    string  `json:"Descripcion"`
}

// ItemsEnvelope holds the product list. The API serves it either as an
// object with a Listado key or as a bare array, so unmarshalling accepts
// both shapes.
type ItemsEnvelope struct {
	Listado []Producto
}

type itemsObject struct {
	Listado []Producto `json:"Listado"`
}

// UnmarshalJSON accepts {"Listado": [...]}, [...], or null.
func (e *ItemsEnvelope) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		e.Listado = nil
		return nil
	}

	if data[0] == '[' {
		return json.Unmarshal(data, &e.Listado)
	}

	var obj itemsObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Listado = obj.Listado
	return nil
}
