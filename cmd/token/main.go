// token emite un JWT de desarrollo firmado con JWT_SECRET, para probar la API localmente.
//
// Uso: go run ./cmd/token -user u1 -role bodeguero
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/adanjr/inventory-management-sub000/pkg/config"
	"github.com/adanjr/inventory-management-sub000/pkg/jwt"
)

func main() {
	userID := flag.String("user", "dev", "user_id del token")
	role := flag.String("role", "admin", "admin | bodeguero | vendedor")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	token, err := jwt.Generate(cfg.JWT.Secret, *userID, *role, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generar token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
