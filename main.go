package main

// GET    /products, /products/{id}, /home   - catalog
// *      /cart, /cart/items/{id}            - per-session cart
// *      /favorites, /favorites/{id}        - signed-in user's favorites
// *      /compare, /compare/{id}            - per-session comparison list
// GET    /contact/whatsapp                  - chat link

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront API: catalog, cart, favorites and product comparison",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
