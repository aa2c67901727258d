// seed_inventory genera un script SQL para poblar ubicaciones y vehículos a partir del
// CSV de inventario (ver internal/infrastructure/seed). El mismo archivo sirve como
// SEED_CSV del almacenamiento en memoria.
//
// Uso: go run ./cmd/seed_inventory [ruta/inventario.csv] [-latin1]
// Por defecto busca inventario.csv en el directorio actual.
// Escribe: migrations/0002_seed_inventory.up.sql
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adanjr/inventory-management-sub000/internal/infrastructure/seed"
)

// availableStatusID ID sembrado de AVAILABLE en 0001_init.up.sql.
const availableStatusID = "1"

func main() {
	csvPath := "inventario.csv"
	latin1 := false
	for _, arg := range os.Args[1:] {
		if arg == "-latin1" {
			latin1 = true
			continue
		}
		csvPath = arg
	}
	inv, err := seed.ReadFile(csvPath, latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// Ruta del script de salida (relativa al módulo)
	outPath := filepath.Join(findModuleRoot(), "migrations", "0002_seed_inventory.up.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSeed(out, inv); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d ubicaciones, %d vehículos\n", outPath, len(inv.Locations), len(inv.Vehicles))
}

func writeSeed(w io.Writer, inv *seed.Inventory) error {
	var b strings.Builder
	b.WriteString("-- Ubicaciones y vehículos iniciales\n")
	b.WriteString("-- Generado por cmd/seed_inventory\n\n")

	// Ubicaciones ordenadas por ID para salida estable
	ids := inv.LocationIDs()

	if len(ids) > 0 {
		b.WriteString("-- 1. Ubicaciones\n")
		b.WriteString("INSERT INTO locations (id, name) VALUES\n")
		for i, id := range ids {
			fmt.Fprintf(&b, "  ('%s', '%s')", escapeSQL(id), escapeSQL(inv.Locations[id]))
			if i < len(ids)-1 {
				b.WriteString(",\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name;\n\n")
	}

	if len(inv.Vehicles) > 0 {
		b.WriteString("-- 2. Vehículos disponibles en su ubicación\n")
		for _, v := range inv.Vehicles {
			fmt.Fprintf(&b, "INSERT INTO vehicles (id, vin, model_id, color_id, location_id, availability_status_id)\n")
			fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', '%s', '%s')\n",
				escapeSQL(v.ID), escapeSQL(v.VIN), escapeSQL(v.ModelID), escapeSQL(v.ColorID), escapeSQL(v.LocationID), availableStatusID)
			b.WriteString("ON CONFLICT (id) DO NOTHING;\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
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
