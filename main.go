package main

import (
	"os"

	"ollamascout/api"
	"ollamascout/cli"
	"ollamascout/logging"
)

// @title                       Ollama Scout API
// @version                     1.0
// @description                 Queue two-phase Ollama discovery scans and fetch their results.
// @license.name                MIT
// @license.url                 https://opensource.org/licenses/MIT
// @host                        localhost:8080
// @BasePath                    /api/v1
// @schemes                     http
// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer token. Use the format: Bearer <API_KEY>
func main() {
	if len(os.Args) > 1 && os.Args[1] == "serve" {
		if err := api.Run(); err != nil {
			logging.Logger().Error("api server stopped", "error", err)
			os.Exit(1)
		}
		return
	}
	os.Exit(cli.Run(os.Args[1:], os.Stdout, os.Stderr))
}
