// Package seed lee el inventario inicial (ubicaciones y vehículos) exportado del
// sistema anterior como CSV con columnas location_id, location_name, vehicle_id,
// vin, model_id, color_id. Acepta UTF-8 o ISO-8859-1 (exportaciones de Excel).
package seed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Vehicle una fila de vehículo del CSV, ubicado en LocationID.
type Vehicle struct {
	ID         string
	VIN        string
	ModelID    string
	ColorID    string
	LocationID string
}

// Inventory ubicaciones (id -> nombre) y vehículos en el orden del archivo.
type Inventory struct {
	Locations map[string]string
	Vehicles  []Vehicle
}

// LocationIDs devuelve los IDs de ubicación ordenados.
func (inv *Inventory) LocationIDs() []string {
	ids := make([]string, 0, len(inv.Locations))
	for id := range inv.Locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReadFile abre path y lo parsea. Con latin1 el contenido se decodifica desde ISO-8859-1.
func ReadFile(path string, latin1 bool) (*Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrir CSV: %w", err)
	}
	defer f.Close()
	inv, err := Parse(Decode(f, latin1))
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", path, err)
	}
	return inv, nil
}

// Decode envuelve r con el decodificador ISO-8859-1 si latin1 es true.
func Decode(r io.Reader, latin1 bool) io.Reader {
	if !latin1 {
		return r
	}
	return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
}

// Parse lee el CSV con encabezado. Filas sin location_id se ignoran; filas sin vehículo
// solo declaran la ubicación. Un vehículo repetido es error.
func Parse(r io.Reader) (*Inventory, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV vacío")
	}
	inv := &Inventory{Locations: make(map[string]string)}
	seen := make(map[string]bool)
	for i, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, fmt.Errorf("fila %d: se esperaban 6 columnas, hay %d", i+2, len(rec))
		}
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}
		locID, locName := rec[0], rec[1]
		if locID == "" {
			continue
		}
		inv.Locations[locID] = locName
		v := Vehicle{ID: rec[2], VIN: rec[3], ModelID: rec[4], ColorID: rec[5], LocationID: locID}
		if v.ID == "" || v.ModelID == "" || v.ColorID == "" {
			continue
		}
		if seen[v.ID] {
			return nil, fmt.Errorf("fila %d: vehículo %s repetido", i+2, v.ID)
		}
		seen[v.ID] = true
		inv.Vehicles = append(inv.Vehicles, v)
	}
	return inv, nil
}
